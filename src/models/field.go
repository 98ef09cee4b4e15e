package models

import "encoding/json"

// Field is an optional value that records why it is missing.
type Field[T any] struct {
	Value   T
	Present bool
	Reason  string
}

func Present[T any](v T) Field[T] {
	return Field[T]{Value: v, Present: true}
}

func Absent[T any](reason string) Field[T] {
	return Field[T]{Reason: reason}
}

// -----------------------------------------------------------------------------

// OrElse returns the value, or def when absent.
func (f Field[T]) OrElse(def T) T {
	if f.Present {
		return f.Value
	}
	return def
}

// -----------------------------------------------------------------------------

type fieldJSON[T any] struct {
	Value  *T     `json:"value,omitempty"`
	Absent string `json:"absent,omitempty"`
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Present {
		v := f.Value
		return json.Marshal(fieldJSON[T]{Value: &v})
	}
	reason := f.Reason
	if reason == "" {
		reason = "N/A"
	}
	return json.Marshal(fieldJSON[T]{Absent: reason})
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	var raw fieldJSON[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Value != nil {
		*f = Present(*raw.Value)
		return nil
	}
	*f = Absent[T](raw.Absent)
	return nil
}
