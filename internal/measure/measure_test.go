package measure

import (
	"encoding/json"
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name     string
		num, den int
		want     Value
	}{
		{"normal", 3, 4, Of(0.75)},
		{"all", 5, 5, Of(1)},
		{"none", 0, 5, Of(0)},
		{"zero denominator", 0, 0, NA},
		{"nonzero over zero", 3, 0, NA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ratio(tt.num, tt.den); got != tt.want {
				t.Errorf("Ratio(%d, %d) = %v, want %v", tt.num, tt.den, got, tt.want)
			}
		})
	}
}

func TestOf_RejectsNaNAndInf(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if Of(f).Valid() {
			t.Errorf("Of(%v) should be NA", f)
		}
	}
}

func TestNA_IsZeroValueAndDistinctFromZero(t *testing.T) {
	var v Value
	if v != NA {
		t.Error("zero Value should equal NA")
	}
	if Of(0) == NA {
		t.Error("Of(0) must not equal NA")
	}
	if got := NA.Or(-1); got != -1 {
		t.Errorf("NA.Or(-1) = %v", got)
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	in := []Value{Of(1.0 / 3.0), NA, Of(0)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "[0.3333333333333333,null,0]" {
		t.Errorf("Marshal = %s", data)
	}
	var out []Value
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestParse_StringRoundTrip(t *testing.T) {
	for _, v := range []Value{Of(2.0 / 7.0), NA, Of(-0.125), Of(1e-12)} {
		got, err := Parse(v.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", v.String(), err)
		}
		if got != v {
			t.Errorf("Parse(%q) = %v, want %v", v.String(), got, v)
		}
	}
	if _, err := Parse("abc"); err == nil {
		t.Error("Parse(abc) should fail")
	}
}

func TestPtr(t *testing.T) {
	if NA.Ptr() != nil {
		t.Error("NA.Ptr() should be nil")
	}
	p := Of(0.5).Ptr()
	if p == nil || *p != 0.5 {
		t.Fatalf("Ptr = %v", p)
	}
	if FromPtr(p) != Of(0.5) || FromPtr(nil) != NA {
		t.Error("FromPtr mismatch")
	}
}

func TestFloats(t *testing.T) {
	got := Floats([]Value{Of(1), NA, Of(3)})
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("Floats = %v", got)
	}
}
