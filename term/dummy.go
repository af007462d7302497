package term

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Dummy is a one-hot indicator for a single level of a categorical column.
// The reference level of the column carries no dummy and is absorbed by the
// intercept.
type Dummy struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

func NewDummy(name, level string) *Dummy {
	return &Dummy{name, level}
}

func (d Dummy) String() string {
	return fmt.Sprintf("dum_%s_%s", d.Name, d.Level)
}

func (d Dummy) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return d.Name, true
	case "level":
		return d.Level, true
	}
	return "", false
}

func (d Dummy) Type() TermType {
	return TermTypeDummy
}

func (d Dummy) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = d.Name
	res["level"] = d.Level
	return res
}

func (d *Dummy) UnmarshalJSON(data []byte) error {
	type alias Dummy
	var out alias
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	d.Name = out.Name
	d.Level = out.Level
	return nil
}
