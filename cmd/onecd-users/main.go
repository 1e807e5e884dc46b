// Command onecd-users lists a 1CD database's users table, the same
// end-to-end scenario as the original driver's sample program.
package main

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"

	"github.com/go1cd/onecd/internal/field"
	"github.com/go1cd/onecd/internal/logging"
	"github.com/go1cd/onecd/onecd"
)

var CLI struct {
	Path       string `arg:"" help:"Path to the .1cd database file" type:"existingfile"`
	Table      string `help:"Table to list" default:"V8USERS"`
	CachePages int    `name:"cache-pages" help:"Page cache capacity, in pages" default:"64"`
	Stats      bool   `help:"Print database and table statistics before listing"`
	Verify     string `help:"Compare the table's checksum against this hex digest instead of listing rows"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("onecd-users"),
		kong.Description("List the users table of a 1CD database"),
		kong.UsageOnError(),
	)

	logging.InitLogger(logging.LevelWarn, logging.FormatText)

	ctx.FatalIfErrorf(run())
}

func run() error {
	db, oerr := onecd.Open(CLI.Path, onecd.WithCachePages(CLI.CachePages))
	if oerr != nil {
		return oerr
	}
	defer db.Close()

	logging.Debug("database opened", "path", CLI.Path, "page_size", db.PageSize(), "tables", db.TableCount())

	table, err := db.FindTable(CLI.Table)
	if err != nil {
		return fmt.Errorf("table %q not found: %w", CLI.Table, err)
	}

	if CLI.Stats {
		printStats(db, table)
	}

	if CLI.Verify != "" {
		return verify(table, CLI.Verify)
	}

	return list(table)
}

func printStats(db *onecd.Database, table *onecd.Table) {
	fmt.Printf("page size:    %s\n", humanize.Bytes(uint64(db.PageSize())))
	fmt.Printf("language:     %s\n", db.Language())
	fmt.Printf("table count:  %d\n", db.TableCount())
	fmt.Printf("table %q rows: %d\n", table.Name(), table.Size())
}

func verify(table *onecd.Table, want string) error {
	got, err := onecd.ChecksumTable(table)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
	}
	fmt.Println("checksum matches")
	return nil
}

func list(table *onecd.Table) error {
	nameIdx, err := table.FieldIndex("NAME")
	if err != nil {
		return err
	}
	showIdx, err := table.FieldIndex("SHOW")
	if err != nil {
		return err
	}

	for i := uint32(0); i < table.Size(); i++ {
		if err := table.Seek(i); err != nil {
			return err
		}
		if table.IsDeleted() {
			continue
		}

		name, _, err := onecd.GetField[field.StrVar](table, nameIdx)
		if err != nil {
			return err
		}
		show, _, err := onecd.GetField[field.Boolean](table, showIdx)
		if err != nil {
			return err
		}

		prefix := "- "
		if show {
			prefix = "+ "
		}
		fmt.Println(prefix + string(name))
	}

	return nil
}
