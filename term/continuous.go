package term

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Continuous is a numeric column used directly as a regressor.
type Continuous struct {
	Name string `json:"name"`
}

func NewContinuous(name string) *Continuous {
	return &Continuous{name}
}

func (c Continuous) String() string {
	return fmt.Sprintf("num_%s", c.Name)
}

func (c Continuous) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return c.Name, true
	}
	return "", false
}

func (c Continuous) Type() TermType {
	return TermTypeContinuous
}

func (c Continuous) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = c.Name
	return res
}

func (c *Continuous) UnmarshalJSON(data []byte) error {
	type alias Continuous
	var out alias
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	c.Name = out.Name
	return nil
}
