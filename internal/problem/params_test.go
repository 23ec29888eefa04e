package problem_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-classroom/internal/problem"
)

func TestReader_Int(t *testing.T) {
	p := problem.Params{
		"int":    3,
		"float":  4.0,
		"number": json.Number("-2"),
		"string": "7",
		"frac":   1.5,
		"bool":   true,
		"huge":   1e20,
		"edge":   float64(1 << 63),
		"uint":   uint64(1 << 63),
		"wide":   problem.MaxMagnitude + 1,
		"limit":  -problem.MaxMagnitude,
	}
	tests := []struct {
		key     string
		want    int
		wantErr bool
	}{
		{"int", 3, false},
		{"float", 4, false},
		{"number", -2, false},
		{"string", 7, false},
		{"frac", 0, true},
		{"bool", 0, true},
		{"missing", 0, true},
		{"huge", 0, true},
		{"edge", 0, true},
		{"uint", 0, true},
		{"wide", 0, true},
		{"limit", -problem.MaxMagnitude, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			rd := p.Read()
			got := rd.Int(tt.key)
			if (rd.Err() != nil) != tt.wantErr {
				t.Fatalf("Int(%q) error = %v, wantErr %v", tt.key, rd.Err(), tt.wantErr)
			}
			if tt.wantErr && !errors.Is(rd.Err(), problem.ErrInvalidParam) {
				t.Errorf("error %v is not ErrInvalidParam", rd.Err())
			}
			if got != tt.want {
				t.Errorf("Int(%q) = %d, want %d", tt.key, got, tt.want)
			}
		})
	}
}

func TestReader_Range(t *testing.T) {
	rd := problem.Params{"lo": 5, "hi": 2}.Read()
	rd.Range("lo", "hi")
	if rd.Err() == nil {
		t.Error("Range() with min > max should fail")
	}

	rd = problem.Params{"lo": -2, "hi": 2}.Read()
	lo, hi := rd.Range("lo", "hi")
	if rd.Err() != nil || lo != -2 || hi != 2 {
		t.Errorf("Range() = (%d, %d, %v), want (-2, 2, nil)", lo, hi, rd.Err())
	}
}

func TestReader_KeepsFirstError(t *testing.T) {
	rd := problem.Params{}.Read()
	rd.Int("first")
	rd.Int("second")
	if err := rd.Err(); err == nil || !strings.Contains(err.Error(), "first") {
		t.Errorf("Err() = %v, want error naming first", err)
	}
}

func TestReader_Bool(t *testing.T) {
	p := problem.Params{"t": true, "s": "false", "bad": "maybe"}
	rd := p.Read()
	if !rd.Bool("t") || rd.Bool("s") {
		t.Error("Bool() decoded wrong value")
	}
	if rd.Err() != nil {
		t.Fatalf("Bool() error = %v", rd.Err())
	}
	rd.Bool("bad")
	if rd.Err() == nil {
		t.Error("Bool(bad) should fail")
	}
}

func TestParams_Clone(t *testing.T) {
	p := problem.Params{"a": 1}
	c := p.Clone()
	c["a"] = 2
	if p["a"] != 1 {
		t.Error("Clone() shares storage with the original")
	}
}
