package descriptor

import (
	"regexp"
	"strconv"

	"github.com/go1cd/onecd/internal/field"
	"github.com/go1cd/onecd/internal/onecderr"
)

// TableSchema is a parsed table descriptor: its name, column list, record
// lock flag, and the three object indices the original three-file layout
// split records, blob and index data across (the third is cataloged but
// never read here).
type TableSchema struct {
	Name        string
	Columns     []field.Params
	RecordLock  bool
	RecordsObj  uint32
	BlobObj     uint32
	IndexesObj  uint32
}

var (
	nameRe  = regexp.MustCompile(`\{"([^"]+)"`)
	fieldRe = regexp.MustCompile(`\{"([^"]+)","([^"]+)",([0-9]+),([0-9]+),([0-9]+),"([^"]+)"\}`)
	lockRe  = regexp.MustCompile(`\{"Recordlock","([0-9])"\}`)
	filesRe = regexp.MustCompile(`\{"Files",([0-9]+),([0-9]+),([0-9]+)\}`)
)

var typeCodes = map[string]field.Type{
	"B":   field.TypeBinary,
	"L":   field.TypeBoolean,
	"N":   field.TypeDigit,
	"NC":  field.TypeStrFix,
	"NVC": field.TypeStrVar,
	"RV":  field.TypeVersion,
	"NT":  field.TypeStrBlob,
	"I":   field.TypeBinBlob,
	"DT":  field.TypeDateTime,
}

var caseSens = map[string]bool{
	"CS": true,
	"CI": false,
}

// Parse decodes a table descriptor's brace-and-quote text into a schema.
// Each section is located by scanning the whole text for its pattern
// rather than requiring a specific position: the descriptor is a single
// flat object, so sections are found wherever they occur.
func Parse(descr string) (TableSchema, error) {
	name, err := parseName(descr)
	if err != nil {
		return TableSchema{}, err
	}

	columns, err := parseFields(descr)
	if err != nil {
		return TableSchema{}, err
	}

	lock, err := parseLock(descr)
	if err != nil {
		return TableSchema{}, err
	}

	records, blobObj, indexes, err := parseFiles(descr)
	if err != nil {
		return TableSchema{}, err
	}

	return TableSchema{
		Name:       name,
		Columns:    columns,
		RecordLock: lock,
		RecordsObj: records,
		BlobObj:    blobObj,
		IndexesObj: indexes,
	}, nil
}

func parseName(descr string) (string, error) {
	m := nameRe.FindStringSubmatch(descr)
	if m == nil {
		return "", onecderr.New(onecderr.ParseError, "descriptor: table name not found")
	}
	return m[1], nil
}

func parseFields(descr string) ([]field.Params, error) {
	matches := fieldRe.FindAllStringSubmatch(descr, -1)

	columns := make([]field.Params, 0, len(matches))
	for _, m := range matches {
		typ, ok := typeCodes[m[2]]
		if !ok {
			return nil, onecderr.Newf(onecderr.ParseError, "descriptor: unknown field type code %q", m[2])
		}

		nullFlag, err := strconv.ParseUint(m[3], 10, 64)
		if err != nil {
			return nil, onecderr.Wrap(onecderr.ParseError, "descriptor: bad field null flag", err)
		}
		length, err := strconv.ParseUint(m[4], 10, 64)
		if err != nil {
			return nil, onecderr.Wrap(onecderr.ParseError, "descriptor: bad field length", err)
		}
		precision, err := strconv.ParseUint(m[5], 10, 64)
		if err != nil {
			return nil, onecderr.Wrap(onecderr.ParseError, "descriptor: bad field precision", err)
		}

		cs, ok := caseSens[m[6]]
		if !ok {
			return nil, onecderr.Newf(onecderr.ParseError, "descriptor: unknown case sensitivity token %q", m[6])
		}

		columns = append(columns, field.Params{
			Name:       m[1],
			Type:       typ,
			NullExists: nullFlag != 0,
			Length:     int(length),
			Precision:  int(precision),
			CaseSens:   cs,
		})
	}

	return columns, nil
}

func parseLock(descr string) (bool, error) {
	m := lockRe.FindStringSubmatch(descr)
	if m == nil {
		return false, onecderr.New(onecderr.ParseError, "descriptor: Recordlock parameter not found")
	}
	return m[1] == "1", nil
}

func parseFiles(descr string) (records, blobObj, indexes uint32, err error) {
	m := filesRe.FindStringSubmatch(descr)
	if m == nil {
		return 0, 0, 0, onecderr.New(onecderr.ParseError, "descriptor: Files parameter not found")
	}

	vals := make([]uint32, 3)
	for i, s := range m[1:4] {
		n, perr := strconv.ParseUint(s, 10, 32)
		if perr != nil {
			return 0, 0, 0, onecderr.Wrap(onecderr.ParseError, "descriptor: bad Files index", perr)
		}
		vals[i] = uint32(n)
	}

	return vals[0], vals[1], vals[2], nil
}
