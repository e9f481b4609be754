package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"

	"tasks-lab/codec"
)

// inspect dumps the Tasks records of a Badger database as a table.
// It opens the database read-only so it can run next to a live server.
func main() {
	dbPath := flag.String("db", "./data/tasks", "Path to badger DB")
	prefix := flag.String("prefix", "task:", "Prefix to scan (task:, evt:, ver:)")
	limit := flag.Int("limit", 0, "Maximum number of rows, 0 for all")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Aggregate", "Version", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	rows := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			if *limit > 0 && rows >= *limit {
				return nil
			}
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				table.Append(row(key, v))
				return nil
			})
			if err != nil {
				return err
			}
			rows++
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
	fmt.Printf("%d rows\n", rows)
}

func row(key string, value []byte) []string {
	switch {
	case strings.HasPrefix(key, "ver:"):
		if len(value) != 8 {
			return []string{key, "VERSION", strings.TrimPrefix(key, "ver:"), "?", "malformed"}
		}
		return []string{key, "VERSION", strings.TrimPrefix(key, "ver:"), fmt.Sprint(binary.BigEndian.Uint64(value)), ""}
	case strings.HasPrefix(key, "evt:"):
		msg, err := codec.UnmarshalBinary(value)
		if err != nil {
			return []string{key, "EVENT", "", "", err.Error()}
		}
		env, err := codec.DecodeEvent(msg)
		if err != nil {
			return []string{key, "EVENT", "", "", err.Error()}
		}
		return []string{key, env.Message.TypeName(), env.Message.AggregateID(), fmt.Sprint(env.Context.Version), fmt.Sprintf("%+v", env.Message)}
	case strings.HasPrefix(key, "task:"):
		msg, err := codec.UnmarshalBinary(value)
		if err != nil {
			return []string{key, "TASK", "", "", err.Error()}
		}
		task, err := codec.DecodeTask(msg)
		if err != nil {
			return []string{key, "TASK", "", "", err.Error()}
		}
		return []string{key, "TASK", task.ID.String(), fmt.Sprint(task.Version), task.Title}
	default:
		return []string{key, "RAW", "", "", fmt.Sprintf("%d bytes", len(value))}
	}
}
