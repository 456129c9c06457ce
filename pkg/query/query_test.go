package query

import (
	"reflect"
	"testing"
)

// TestEscapeRoundTrip tests that Unescape is a right inverse of Escape
// for strings containing reserved and non-ASCII characters.
func TestEscapeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"two words",
		"a&b=c",
		"100%",
		"#fragment",
		"café",
		"日本語テキスト",
		"emoji 🎉 value",
		"mixed &=#% café",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got := Unescape(Escape(in))
			if got != in {
				t.Errorf("round trip: got %q, want %q", got, in)
			}
		})
	}
}

// TestUnescapeMalformed tests that malformed percent-encoding passes
// through unchanged instead of failing.
func TestUnescapeMalformed(t *testing.T) {
	inputs := []string{"%", "%zz", "abc%2", "100%%"}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got := Unescape(in)
			if got != in {
				t.Errorf("malformed input: got %q, want input unchanged %q", got, in)
			}
		})
	}
}

func TestEscapeReserved(t *testing.T) {
	got := Escape("a&b=c #d")
	if got != "a%26b%3Dc+%23d" {
		t.Errorf("Escape: got %q", got)
	}
}

// TestEncodeDecodeRecursive tests element-wise operation over slices and maps.
func TestEncodeDecodeRecursive(t *testing.T) {
	t.Run("StringSlice", func(t *testing.T) {
		in := []string{"a b", "c&d"}
		enc := Encode(in).([]string)
		want := []string{"a+b", "c%26d"}
		if !reflect.DeepEqual(enc, want) {
			t.Errorf("Encode slice: got %v, want %v", enc, want)
		}
		dec := Decode(enc).([]string)
		if !reflect.DeepEqual(dec, in) {
			t.Errorf("Decode slice: got %v, want %v", dec, in)
		}
	})

	t.Run("NestedMap", func(t *testing.T) {
		in := map[string]any{
			"q":    "two words",
			"tags": []string{"go&web"},
			"deep": map[string]any{"k": "a=b"},
		}
		enc := Encode(in).(map[string]any)
		if enc["q"] != "two+words" {
			t.Errorf("Encode map scalar: got %v", enc["q"])
		}
		dec := Decode(enc).(map[string]any)
		if !reflect.DeepEqual(dec, in) {
			t.Errorf("Decode map: got %v, want %v", dec, in)
		}
	})

	t.Run("PassThrough", func(t *testing.T) {
		if got := Encode(42); got != 42 {
			t.Errorf("Encode int: got %v, want 42", got)
		}
		if got := Decode(nil); got != nil {
			t.Errorf("Decode nil: got %v, want nil", got)
		}
	})

	t.Run("NilSlice", func(t *testing.T) {
		if got := EscapeAll(nil); got != nil {
			t.Errorf("EscapeAll(nil): got %v, want nil", got)
		}
	})
}
