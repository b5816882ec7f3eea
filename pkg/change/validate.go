package change

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
)

// Sentinel errors for change validation.
var (
	// ErrInvalidInput is matched by every ValidationError.
	ErrInvalidInput = errors.New("invalid change")
	// ErrMissingField indicates a required field is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrWrongType indicates a field holds a value of the wrong type.
	ErrWrongType = errors.New("wrong type")
	// ErrEmptyValue indicates a required string is empty.
	ErrEmptyValue = errors.New("must not be empty")
	// ErrNoFiles indicates the change touches zero files.
	ErrNoFiles = errors.New("change must touch at least one file")
	// ErrNegativeCount indicates a negative line count.
	ErrNegativeCount = errors.New("must be non-negative")
	// ErrNotIntegral indicates a line count with a fractional part.
	ErrNotIntegral = errors.New("must be an integer")
	// ErrCountOutOfRange indicates a line count above MaxLineCount.
	ErrCountOutOfRange = errors.New("exceeds maximum line count")
	// ErrDecode indicates the input document is not valid JSON.
	ErrDecode = errors.New("decode change")
)

// rootField names the document itself in validation errors.
const rootField = "$"

// MaxLineCount bounds LinesAdded and LinesRemoved of a single file.
const MaxLineCount = math.MaxInt32

// ValidationError reports the first structural problem found in a change.
type ValidationError struct {
	// Field is the dotted path of the offending field, e.g. "files[2].path".
	Field string
	// Err is one of the package sentinel errors.
	Err error
	// Detail is optional extra context such as the expected type.
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %v: %s", ErrInvalidInput, e.Field, e.Err, e.Detail)
	}

	return fmt.Sprintf("%s: %s: %v", ErrInvalidInput, e.Field, e.Err)
}

// Unwrap exposes both ErrInvalidInput and the specific sentinel.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalidInput, e.Err}
}

func invalid(field string, err error, detail string) *ValidationError {
	return &ValidationError{Field: field, Err: err, Detail: detail}
}

// Decode reads one JSON document from r and validates it.
func Decode(r io.Reader) (Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Input{}, fmt.Errorf("read change: %w", err)
	}

	return Parse(data)
}

// Parse decodes a JSON document and validates it into an Input.
func Parse(data []byte) (Input, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any

	err := dec.Decode(&raw)
	if err != nil {
		return Input{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if dec.More() {
		return Input{}, fmt.Errorf("%w: trailing data after document", ErrDecode)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return Input{}, invalid(rootField, ErrWrongType, "expected object, got "+typeName(raw))
	}

	return FromMap(obj)
}

// FromMap validates a decoded JSON object and builds an Input from it.
// Fields are checked in a fixed order so the same malformed document always
// reports the same first error. Unknown keys are ignored.
func FromMap(raw map[string]any) (Input, error) {
	var in Input

	id, err := requiredString(raw, FieldIdentifier, FieldIdentifier)
	if err != nil {
		return Input{}, err
	}

	in.Identifier = id

	in.Files, err = filesFromMap(raw)
	if err != nil {
		return Input{}, err
	}

	in.CoverageDelta, err = coverageFromMap(raw)
	if err != nil {
		return Input{}, err
	}

	in.Metadata, err = metadataFromMap(raw)
	if err != nil {
		return Input{}, err
	}

	return in, nil
}

func filesFromMap(raw map[string]any) ([]FileChange, error) {
	value, ok := raw[FieldFiles]
	if !ok || value == nil {
		return nil, invalid(FieldFiles, ErrMissingField, "")
	}

	items, ok := value.([]any)
	if !ok {
		return nil, invalid(FieldFiles, ErrWrongType, "expected array, got "+typeName(value))
	}

	if len(items) == 0 {
		return nil, invalid(FieldFiles, ErrNoFiles, "")
	}

	files := make([]FileChange, 0, len(items))

	for i, item := range items {
		field := fmt.Sprintf("%s[%d]", FieldFiles, i)

		obj, isObj := item.(map[string]any)
		if !isObj {
			return nil, invalid(field, ErrWrongType, "expected object, got "+typeName(item))
		}

		fc, err := fileFromMap(obj, field)
		if err != nil {
			return nil, err
		}

		files = append(files, fc)
	}

	return files, nil
}

func fileFromMap(obj map[string]any, field string) (FileChange, error) {
	path, err := requiredString(obj, FieldPath, field+"."+FieldPath)
	if err != nil {
		return FileChange{}, err
	}

	added, err := lineCount(obj, FieldLinesAdded, field+"."+FieldLinesAdded)
	if err != nil {
		return FileChange{}, err
	}

	removed, err := lineCount(obj, FieldLinesRemoved, field+"."+FieldLinesRemoved)
	if err != nil {
		return FileChange{}, err
	}

	fc := FileChange{Path: path, LinesAdded: added, LinesRemoved: removed}

	if areaValue, ok := obj[FieldArea]; ok && areaValue != nil {
		area, isString := areaValue.(string)
		if !isString {
			return FileChange{}, invalid(field+"."+FieldArea, ErrWrongType, "expected string, got "+typeName(areaValue))
		}

		fc.Area = area
	}

	return fc, nil
}

func coverageFromMap(raw map[string]any) (*float64, error) {
	value, ok := raw[FieldCoverageDelta]
	if !ok || value == nil {
		return nil, nil //nolint:nilnil // absent delta is a valid unknown.
	}

	delta, isNumber := toFloat(value)
	if !isNumber {
		return nil, invalid(FieldCoverageDelta, ErrWrongType, "expected number, got "+typeName(value))
	}

	return &delta, nil
}

func metadataFromMap(raw map[string]any) (Metadata, error) {
	value, ok := raw[FieldMetadata]
	if !ok || value == nil {
		return nil, nil
	}

	obj, isObj := value.(map[string]any)
	if !isObj {
		return nil, invalid(FieldMetadata, ErrWrongType, "expected object, got "+typeName(value))
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	md := make(Metadata, len(obj))

	for _, k := range keys {
		prim, err := primitive(obj[k])
		if err != nil {
			return nil, invalid(FieldMetadata+"."+k, ErrWrongType, err.Error())
		}

		md[k] = prim
	}

	return md, nil
}

// Validate runs the structural checks on an Input built in Go rather than
// decoded from JSON. Checks run in the same order as FromMap.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Identifier) == "" {
		return invalid(FieldIdentifier, ErrEmptyValue, "")
	}

	if len(in.Files) == 0 {
		return invalid(FieldFiles, ErrNoFiles, "")
	}

	for i, f := range in.Files {
		field := fmt.Sprintf("%s[%d]", FieldFiles, i)

		if strings.TrimSpace(f.Path) == "" {
			return invalid(field+"."+FieldPath, ErrEmptyValue, "")
		}

		err := checkCount(field+"."+FieldLinesAdded, f.LinesAdded)
		if err != nil {
			return err
		}

		err = checkCount(field+"."+FieldLinesRemoved, f.LinesRemoved)
		if err != nil {
			return err
		}
	}

	if in.CoverageDelta != nil && !isFinite(*in.CoverageDelta) {
		return invalid(FieldCoverageDelta, ErrWrongType, "expected finite number")
	}

	keys := make([]string, 0, len(in.Metadata))
	for k := range in.Metadata {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		_, err := primitive(in.Metadata[k])
		if err != nil {
			return invalid(FieldMetadata+"."+k, ErrWrongType, err.Error())
		}
	}

	return nil
}

func requiredString(obj map[string]any, key, field string) (string, error) {
	value, ok := obj[key]
	if !ok || value == nil {
		return "", invalid(field, ErrMissingField, "")
	}

	s, isString := value.(string)
	if !isString {
		return "", invalid(field, ErrWrongType, "expected string, got "+typeName(value))
	}

	if strings.TrimSpace(s) == "" {
		return "", invalid(field, ErrEmptyValue, "")
	}

	return s, nil
}

func lineCount(obj map[string]any, key, field string) (int, error) {
	value, ok := obj[key]
	if !ok || value == nil {
		return 0, invalid(field, ErrMissingField, "")
	}

	f, isNumber := toFloat(value)
	if !isNumber {
		return 0, invalid(field, ErrWrongType, "expected integer, got "+typeName(value))
	}

	if math.Trunc(f) != f {
		return 0, invalid(field, ErrNotIntegral, fmt.Sprintf("got %v", value))
	}

	if f < 0 {
		return 0, invalid(field, ErrNegativeCount, fmt.Sprintf("got %v", value))
	}

	if f > MaxLineCount {
		return 0, invalid(field, ErrCountOutOfRange, fmt.Sprintf("got %v, max %d", value, MaxLineCount))
	}

	return int(f), nil
}

func checkCount(field string, n int) error {
	if n < 0 {
		return invalid(field, ErrNegativeCount, fmt.Sprintf("got %d", n))
	}

	if n > MaxLineCount {
		return invalid(field, ErrCountOutOfRange, fmt.Sprintf("got %d, max %d", n, MaxLineCount))
	}

	return nil
}

// primitive normalizes a metadata value to string, float64, bool, or nil.
func primitive(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool:
		return v, nil
	case json.Number, float64, float32, int, int64, int32:
		f, _ := toFloat(v)
		if !isFinite(f) {
			return nil, errors.New("expected finite number")
		}

		return f, nil
	default:
		return nil, fmt.Errorf("expected primitive, got %s", typeName(value))
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}

		return f, true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	default:
		return 0, false
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64, int32:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
