package hasher_test

import (
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/hasher"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Hash(t *testing.T) {
	type table struct {
		name string
		a    []any
		b    []any
		same bool
	}

	tt := []table{
		{
			name: "same-order",
			a:    []any{"foo"},
			b:    []any{"foo"},
			same: true,
		},
		{
			name: "any-order",
			a:    []any{"one", 2, []string{"three"}},
			b:    []any{[]string{"three"}, "one", 2},
			same: true,
		},
		{
			name: "different-inputs",
			a:    []any{"foo"},
			b:    []any{"bar"},
			same: false,
		},
		{
			name: "string-vs-number",
			a:    []any{"1"},
			b:    []any{1},
			same: false,
		},
	}

	t.Log("Given the need to hash a set of inputs.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling the %s inputs.", testID, tst.name)
				{
					ha := hasher.Hash(tst.a...)
					hb := hasher.Hash(tst.b...)

					if len(ha) != 64 {
						t.Fatalf("\t%s\tTest %d:\tShould get a 64 character hash: got %d", failed, testID, len(ha))
					}
					t.Logf("\t%s\tTest %d:\tShould get a 64 character hash.", success, testID)

					if (ha == hb) != tst.same {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, hb)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, ha)
						t.Fatalf("\t%s\tTest %d:\tShould get the expected hash match: %v", failed, testID, tst.same)
					}
					t.Logf("\t%s\tTest %d:\tShould get the expected hash match: %v", success, testID, tst.same)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_HashKnownValue(t *testing.T) {

	// sha256 of `"foo"`, the canonical form of the string foo.
	const exp = "b2213295d564916f89a6a42455567c87c3f480fcd7a1c15e220f17d7169a790b"

	got := hasher.Hash("foo")
	if got != exp {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", exp)
		t.Fatal("Should produce the sha256 digest of the canonical input.")
	}
}

func Test_LeadingZeros(t *testing.T) {
	tt := map[string]int{
		"":       0,
		"abc":    0,
		"0abc":   1,
		"000abc": 3,
		"0000":   4,
	}

	for hash, exp := range tt {
		if got := hasher.LeadingZeros(hash); got != exp {
			t.Errorf("Should count %d leading zeros in %q: got %d", exp, hash, got)
		}
	}
}
