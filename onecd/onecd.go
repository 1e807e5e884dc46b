// Package onecd is the public facade over the 1CD driver: it wraps
// internal/pager, internal/descriptor and internal/record. Column schemas
// and decoded values are the internal/field types (field.Params,
// field.StrVar, field.StrBlobRef, ...); no other internal type is handed
// to the caller.
package onecd

import (
	"github.com/go1cd/onecd/internal/descriptor"
	"github.com/go1cd/onecd/internal/field"
	"github.com/go1cd/onecd/internal/pager"
	"github.com/go1cd/onecd/internal/record"
)

// defaultCachePages is used when Open is called without WithCachePages.
const defaultCachePages = 64

// Option configures Open. The only knob spec §6 names is page-cache
// capacity; more can be added here without breaking callers.
type Option func(*config)

type config struct {
	cachePages int
}

// WithCachePages sets the page-cache capacity, in pages. Values below 1
// make Open panic (the underlying pager treats them as a programmer error).
func WithCachePages(n int) Option {
	return func(c *config) { c.cachePages = n }
}

// Database is an open 1CD file: the page cache plus its parsed table
// catalog.
type Database struct {
	pages *pager.Pages
	root  *descriptor.Root
}

// Open opens path as a 1CD database and parses its table catalog.
func Open(path string, opts ...Option) (*Database, *OpenError) {
	cfg := config{cachePages: defaultCachePages}
	for _, opt := range opts {
		opt(&cfg)
	}

	pages, err := pager.Open(path, cfg.cachePages)
	if err != nil {
		return nil, convertOpenError(err)
	}

	root, rerr := descriptor.OpenRoot(pages)
	if rerr != nil {
		pages.Close()
		return nil, &OpenError{Code: OpenErrBadFile, Err: rerr}
	}

	return &Database{pages: pages, root: root}, nil
}

// Close releases the database's file handle. A Database must not be used
// after Close.
func (d *Database) Close() error {
	return d.pages.Close()
}

// PageSize returns the database's page size in bytes.
func (d *Database) PageSize() int {
	return d.pages.PageSize()
}

// Language returns the database's declared language tag, e.g. "ru_RU".
func (d *Database) Language() string {
	return d.root.Language()
}

// TableCount returns the number of tables catalogued in the database.
func (d *Database) TableCount() uint32 {
	return d.root.Size()
}

// Table opens the num'th catalogued table's records for reading.
func (d *Database) Table(num uint32) (*Table, error) {
	schema, err := d.root.Get(num)
	if err != nil {
		return nil, wrap(err)
	}
	return openTable(d.pages, schema)
}

// FindTable opens the first catalogued table named name, matching
// find_table() from the original sample program: a linear scan over the
// catalog returning the first schema whose name matches exactly.
func (d *Database) FindTable(name string) (*Table, error) {
	for i := uint32(0); i < d.root.Size(); i++ {
		schema, err := d.root.Get(i)
		if err != nil {
			return nil, wrap(err)
		}
		if schema.Name == name {
			return openTable(d.pages, schema)
		}
	}
	return nil, &Error{Kind: OutOfBounds, Msg: "table " + name + " not found in catalog"}
}

func openTable(pages *pager.Pages, schema descriptor.TableSchema) (*Table, error) {
	records, err := record.Open(pages, schema.RecordsObj, schema.Columns)
	if err != nil {
		return nil, wrap(err)
	}

	var blobs *blobReader
	if hasBlobColumn(schema.Columns) {
		blobs, err = openBlobReader(pages, schema.BlobObj)
		if err != nil {
			return nil, wrap(err)
		}
	}

	return &Table{schema: schema, records: records, blobs: blobs}, nil
}

func hasBlobColumn(columns []field.Params) bool {
	for _, c := range columns {
		if c.Type == field.TypeStrBlob || c.Type == field.TypeBinBlob {
			return true
		}
	}
	return false
}
