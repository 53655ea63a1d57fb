package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// Field adds one typed key/value to a log event.
type Field interface {
	AddTo(event *zerolog.Event)
}

type stringField struct {
	key   string
	value string
}

func (f stringField) AddTo(event *zerolog.Event) { event.Str(f.key, f.value) }

type intField struct {
	key   string
	value int
}

func (f intField) AddTo(event *zerolog.Event) { event.Int(f.key, f.value) }

type int64Field struct {
	key   string
	value int64
}

func (f int64Field) AddTo(event *zerolog.Event) { event.Int64(f.key, f.value) }

type float64Field struct {
	key   string
	value float64
}

func (f float64Field) AddTo(event *zerolog.Event) { event.Float64(f.key, f.value) }

type durationField struct {
	key   string
	value time.Duration
}

func (f durationField) AddTo(event *zerolog.Event) { event.Dur(f.key, f.value) }

type errorField struct {
	value error
}

func (f errorField) AddTo(event *zerolog.Event) { event.Err(f.value) }

type anyField struct {
	key   string
	value interface{}
}

func (f anyField) AddTo(event *zerolog.Event) { event.Interface(f.key, f.value) }

func String(key, value string) Field { return stringField{key, value} }

func Int(key string, value int) Field { return intField{key, value} }

func Int64(key string, value int64) Field { return int64Field{key, value} }

func Float64(key string, value float64) Field { return float64Field{key, value} }

func Duration(key string, value time.Duration) Field { return durationField{key, value} }

func Error(err error) Field { return errorField{err} }

func Any(key string, value interface{}) Field { return anyField{key, value} }
