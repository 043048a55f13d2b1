package validate_test

import (
	"encoding/json"
	"testing"

	"github.com/ardanlabs/powchain/business/sys/validate"
)

type mineRequest struct {
	Data json.RawMessage `json:"data" validate:"required"`
	Peer string          `json:"peer" validate:"omitempty,hostname_port"`
}

func Test_Check(t *testing.T) {
	type table struct {
		name   string
		val    mineRequest
		fields []string
	}

	tt := []table{
		{name: "valid", val: mineRequest{Data: json.RawMessage(`"foo"`)}},
		{name: "missing", val: mineRequest{}, fields: []string{"data"}},
		{name: "badpeer", val: mineRequest{Data: json.RawMessage(`1`), Peer: "nope"}, fields: []string{"peer"}},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			err := validate.Check(tst.val)

			if len(tst.fields) == 0 {
				if err != nil {
					t.Fatalf("Should pass validation: %v", err)
				}
				return
			}

			if !validate.IsFieldErrors(err) {
				t.Fatalf("Should get field errors: got %v", err)
			}

			fields := validate.GetFieldErrors(err).Fields()
			for _, name := range tst.fields {
				if _, exists := fields[name]; !exists {
					t.Fatalf("Should report the %q field: got %v", name, fields)
				}
			}
		}

		t.Run(tst.name, f)
	}
}
