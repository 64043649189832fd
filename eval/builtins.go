package eval

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// NewStdScope builds the standard-library scope every Vm starts from: the
// read/json/yaml/toml/csv family for loading external data into the
// language, plus the core type-conversion functions.
func NewStdScope() *Scope {
	s := NewScope()
	s.Define("read", &Func{Name: "read", Native: readNative})
	s.Define("json", &Func{Name: "json", Native: jsonNative})
	s.Define("yaml", &Func{Name: "yaml", Native: yamlNative})
	s.Define("toml", &Func{Name: "toml", Native: tomlNative})
	s.Define("csv", &Func{Name: "csv", Native: csvNative})
	s.Define("str", &Func{Name: "str", Native: strNative})
	s.Define("int", &Func{Name: "int", Native: intNative})
	s.Define("float", &Func{Name: "float", Native: floatNative})
	return s
}

// FileReadError is returned when a path given to a data-loading builtin
// cannot be resolved or read through the World.
type FileReadError struct {
	Path    string
	Message string
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("cannot read file %q: %s", e.Path, e.Message)
}

// FileParseError is returned when a file read by a data-loading builtin
// cannot be parsed in its expected format.
type FileParseError struct {
	Path    string
	Format  string
	Message string
}

func (e *FileParseError) Error() string {
	return fmt.Sprintf("cannot parse %s file %q: %s", e.Format, e.Path, e.Message)
}

// readDataFile resolves path relative to the currently evaluating source
// and returns its raw bytes.
func readDataFile(vm *Vm, path string) ([]byte, error) {
	id, err := vm.Locate(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Message: err.Error()}
	}
	src, err := vm.World.Source(id)
	if err != nil {
		return nil, &FileReadError{Path: path, Message: err.Error()}
	}
	return []byte(src.Text()), nil
}

func pathArg(funcName string, args *ArgsValue) (string, error) {
	v, err := args.Expect(funcName, 0)
	if err != nil {
		return "", err
	}
	s, ok := v.(Str)
	if !ok {
		return "", typeMismatch(funcName, v, Str(""))
	}
	return string(s), nil
}

func readNative(vm *Vm, args *ArgsValue) (Value, error) {
	path, err := pathArg("read", args)
	if err != nil {
		return nil, err
	}
	data, err := readDataFile(vm, path)
	if err != nil {
		return nil, err
	}
	return Str(data), nil
}

func jsonNative(vm *Vm, args *ArgsValue) (Value, error) {
	path, err := pathArg("json", args)
	if err != nil {
		return nil, err
	}
	data, err := readDataFile(vm, path)
	if err != nil {
		return nil, err
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &FileParseError{Path: path, Format: "JSON", Message: err.Error()}
	}
	return convertToValue(raw)
}

func yamlNative(vm *Vm, args *ArgsValue) (Value, error) {
	path, err := pathArg("yaml", args)
	if err != nil {
		return nil, err
	}
	data, err := readDataFile(vm, path)
	if err != nil {
		return nil, err
	}
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &FileParseError{Path: path, Format: "YAML", Message: err.Error()}
	}
	return convertToValue(raw)
}

func tomlNative(vm *Vm, args *ArgsValue) (Value, error) {
	path, err := pathArg("toml", args)
	if err != nil {
		return nil, err
	}
	data, err := readDataFile(vm, path)
	if err != nil {
		return nil, err
	}
	var raw map[string]interface{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, &FileParseError{Path: path, Format: "TOML", Message: err.Error()}
	}
	return convertToValue(raw)
}

func csvNative(vm *Vm, args *ArgsValue) (Value, error) {
	path, err := pathArg("csv", args)
	if err != nil {
		return nil, err
	}
	delim := ','
	if v, ok := args.Named["delimiter"]; ok {
		s, ok := v.(Str)
		if !ok || len(s) != 1 {
			return nil, typeMismatch("csv", v, Str(","))
		}
		delim = rune(s[0])
	}

	data, err := readDataFile(vm, path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(string(data)))
	r.Comma = delim
	records, err := r.ReadAll()
	if err != nil {
		return nil, &FileParseError{Path: path, Format: "CSV", Message: err.Error()}
	}

	rows := make([]Value, len(records))
	for i, record := range records {
		row := make([]Value, len(record))
		for j, cell := range record {
			row[j] = Str(cell)
		}
		rows[i] = NewArrayValue(row)
	}
	return NewArrayValue(rows), nil
}

// convertToValue maps the generic interface{} trees produced by
// encoding/json, yaml.v3, and BurntSushi/toml into this evaluator's Value
// model.
func convertToValue(v interface{}) (Value, error) {
	switch val := v.(type) {
	case nil:
		return None{}, nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case float64:
		if val == float64(int64(val)) {
			return Int(int64(val)), nil
		}
		return Float(val), nil
	case string:
		return Str(val), nil
	case []interface{}:
		items := make([]Value, len(val))
		for i, elem := range val {
			cv, err := convertToValue(elem)
			if err != nil {
				return nil, err
			}
			items[i] = cv
		}
		return NewArrayValue(items), nil
	case map[string]interface{}:
		d := NewDictValue()
		for k, elem := range val {
			cv, err := convertToValue(elem)
			if err != nil {
				return nil, err
			}
			d.Set(k, cv)
		}
		return d, nil
	case map[interface{}]interface{}:
		d := NewDictValue()
		for k, elem := range val {
			ks, ok := k.(string)
			if !ok {
				ks = fmt.Sprint(k)
			}
			cv, err := convertToValue(elem)
			if err != nil {
				return nil, err
			}
			d.Set(ks, cv)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

func strNative(_ *Vm, args *ArgsValue) (Value, error) {
	v, err := args.Expect("str", 0)
	if err != nil {
		return nil, err
	}
	return Str(Display(v)), nil
}

func intNative(_ *Vm, args *ArgsValue) (Value, error) {
	v, err := args.Expect("int", 0)
	if err != nil {
		return nil, err
	}
	switch n := v.(type) {
	case Int:
		return n, nil
	case Float:
		return Int(int64(n)), nil
	case Bool:
		if n {
			return Int(1), nil
		}
		return Int(0), nil
	case Str:
		var i int64
		if _, err := fmt.Sscanf(string(n), "%d", &i); err != nil {
			return nil, fmt.Errorf("int: cannot parse %q as an integer", string(n))
		}
		return Int(i), nil
	default:
		return nil, typeMismatch("int", v, Int(0))
	}
}

func floatNative(_ *Vm, args *ArgsValue) (Value, error) {
	v, err := args.Expect("float", 0)
	if err != nil {
		return nil, err
	}
	f, ok := asFloat(v)
	if !ok {
		return nil, typeMismatch("float", v, Float(0))
	}
	return Float(f), nil
}
