package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// DataType is the canonical rendering of a column type, e.g. INTEGER,
// VARCHAR(32) or DECIMAL(10,2). Values are produced by ParseDataType.
type DataType string

const (
	SmallInt  DataType = "SMALLINT"
	Integer   DataType = "INTEGER"
	BigInt    DataType = "BIGINT"
	Real      DataType = "REAL"
	Double    DataType = "DOUBLE"
	Boolean   DataType = "BOOLEAN"
	Text      DataType = "TEXT"
	Date      DataType = "DATE"
	Timestamp DataType = "TIMESTAMP"
	UUIDType  DataType = "UUID"
	JSONType  DataType = "JSON"
	Bytea     DataType = "BYTEA"
)

// DataTypeSpec describes a registered type. MinParams and MaxParams bound
// the number of parenthesized integer parameters.
type DataTypeSpec struct {
	Name      string
	Aliases   []string
	MinParams int
	MaxParams int
	// Check validates the parameters once their count is known to be in
	// range. Optional.
	Check func(params []int) error
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*DataTypeSpec)
)

// RegisterDataType adds a type and its aliases to the registry. Names are
// case-insensitive.
func RegisterDataType(spec DataTypeSpec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	s := spec
	s.Name = strings.ToUpper(s.Name)
	registry[s.Name] = &s
	for _, a := range s.Aliases {
		registry[strings.ToUpper(a)] = &s
	}
}

func lookupDataType(name string) (*DataTypeSpec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[strings.ToUpper(name)]
	return s, ok
}

// DataTypeExists reports whether name or alias is registered.
func DataTypeExists(name string) bool {
	_, ok := lookupDataType(name)
	return ok
}

// ParseDataType resolves a type name and its parameters to the canonical
// DataType.
func ParseDataType(name string, params []int) (DataType, error) {
	spec, ok := lookupDataType(name)
	if !ok {
		return "", ErrInvalidDataType.Msgf("unknown data type %s", name)
	}
	if len(params) < spec.MinParams || len(params) > spec.MaxParams {
		return "", ErrInvalidDataType.Msgf("data type %s takes %s, got %d", spec.Name, paramRange(spec), len(params))
	}
	if spec.Check != nil {
		if err := spec.Check(params); err != nil {
			return "", ErrInvalidDataType.MsgErr(fmt.Sprintf("invalid parameters for %s: %v", spec.Name, err), err)
		}
	}
	if len(params) == 0 {
		return DataType(spec.Name), nil
	}
	p := make([]string, len(params))
	for i, v := range params {
		p[i] = strconv.Itoa(v)
	}
	return DataType(spec.Name + "(" + strings.Join(p, ",") + ")"), nil
}

// ParseDataTypeString parses a rendered type such as "varchar(32)".
func ParseDataTypeString(s string) (DataType, error) {
	s = strings.TrimSpace(s)
	name, rest, hasParams := strings.Cut(s, "(")
	var params []int
	if hasParams {
		inner, ok := strings.CutSuffix(strings.TrimSpace(rest), ")")
		if !ok {
			return "", ErrInvalidDataType.Msgf("malformed data type %q", s)
		}
		for _, f := range strings.Split(inner, ",") {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return "", ErrInvalidDataType.Msgf("malformed data type %q", s)
			}
			params = append(params, v)
		}
	}
	return ParseDataType(strings.TrimSpace(name), params)
}

// Base returns the type name without parameters.
func (d DataType) Base() string {
	name, _, _ := strings.Cut(string(d), "(")
	return name
}

func (d DataType) String() string {
	return string(d)
}

func (d DataType) MarshalText() ([]byte, error) {
	return []byte(d), nil
}

func (d *DataType) UnmarshalText(text []byte) error {
	dt, err := ParseDataTypeString(string(text))
	if err != nil {
		return err
	}
	*d = dt
	return nil
}

func paramRange(spec *DataTypeSpec) string {
	switch {
	case spec.MaxParams == 0:
		return "no parameters"
	case spec.MinParams == spec.MaxParams:
		return fmt.Sprintf("%d parameters", spec.MaxParams)
	default:
		return fmt.Sprintf("%d to %d parameters", spec.MinParams, spec.MaxParams)
	}
}

func init() {
	RegisterDataType(DataTypeSpec{Name: "SMALLINT", Aliases: []string{"INT2"}})
	RegisterDataType(DataTypeSpec{Name: "INTEGER", Aliases: []string{"INT", "INT4"}})
	RegisterDataType(DataTypeSpec{Name: "BIGINT", Aliases: []string{"INT8"}})
	RegisterDataType(DataTypeSpec{Name: "REAL", Aliases: []string{"FLOAT", "FLOAT4"}})
	RegisterDataType(DataTypeSpec{Name: "DOUBLE", Aliases: []string{"FLOAT8"}})
	RegisterDataType(DataTypeSpec{Name: "BOOLEAN", Aliases: []string{"BOOL"}})
	RegisterDataType(DataTypeSpec{Name: "TEXT", Aliases: []string{"STRING"}})
	RegisterDataType(DataTypeSpec{Name: "DATE"})
	RegisterDataType(DataTypeSpec{Name: "TIMESTAMP"})
	RegisterDataType(DataTypeSpec{Name: "UUID"})
	RegisterDataType(DataTypeSpec{Name: "JSON"})
	RegisterDataType(DataTypeSpec{Name: "BYTEA"})
	RegisterDataType(DataTypeSpec{
		Name:      "VARCHAR",
		MinParams: 1,
		MaxParams: 1,
		Check: func(params []int) error {
			if params[0] < 1 {
				return fmt.Errorf("length must be positive")
			}
			return nil
		},
	})
	RegisterDataType(DataTypeSpec{
		Name:      "DECIMAL",
		Aliases:   []string{"NUMERIC"},
		MinParams: 1,
		MaxParams: 2,
		Check: func(params []int) error {
			if params[0] < 1 || params[0] > 38 {
				return fmt.Errorf("precision must be between 1 and 38")
			}
			if len(params) == 2 && (params[1] < 0 || params[1] > params[0]) {
				return fmt.Errorf("scale must be between 0 and the precision")
			}
			return nil
		},
	})
}
