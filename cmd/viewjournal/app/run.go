package app

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.etcd.io/bbolt"

	"github.com/daichitakahashi/waitevent/journal"
)

func Run() {
	var (
		event      = pflag.StringP("event", "e", "", "show only the event with this name")
		transition = pflag.StringP("transition", "t", "", "comma-separated transition kinds to show")
		short      = pflag.BoolP("short", "s", false, "omit operator IDs")
	)
	pflag.Parse()

	filename := pflag.Arg(0)
	if filename == "" {
		log.Fatal("journal.db file must be specified")
	}

	if err := run(filename, *event, *transition, *short); err != nil {
		log.Fatal(err)
	}
}

func run(filename, event, transition string, short bool) error {
	_, err := os.Stat(filename)
	if err != nil {
		return err
	}

	db, err := bbolt.Open(filename, 0644, nil)
	if err != nil {
		return fmt.Errorf("failed to open database: %s", err)
	}
	defer func() {
		_ = db.Close()
	}()

	filter := func(journal.Transition) bool { return true }
	if transition != "" {
		kinds := map[journal.Transition]bool{}
		for _, t := range strings.Split(transition, ",") {
			kinds[journal.Transition(t)] = true
		}
		filter = func(t journal.Transition) bool { return kinds[t] }
	}

	store, err := journal.NewRecordStore[journal.TransitionRecord](db)
	if err != nil {
		return err
	}

	p := newTablePrinter(short)
	if event == "" {
		err = store.ForEach(func(name string, r *journal.TransitionRecord) error {
			p.insertTransitionLogs(name, r, filter)
			return nil
		})
		if err != nil {
			return err
		}
	} else {
		r, err := store.Get(event)
		if err != nil {
			return err
		}
		p.insertTransitionLogs(event, r, filter)
	}

	p.print()
	return nil
}
