package dataset

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUnknownWeekday   = errors.New("unknown weekday label")
	ErrUnknownRoadType  = errors.New("unknown road type label")
	ErrUnknownLighting  = errors.New("unknown lighting label")
	ErrUnknownSeverity  = errors.New("unknown severity label")
	ErrUnknownCollision = errors.New("unknown collision type label")
)

// Weekday is the published day of the week of an accident. The source stores
// French labels, Lundi through Dimanche.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayLabels = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
var weekdayFrench = [...]string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}

func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return "unknown"
	}
	return weekdayLabels[w]
}

// French returns the label the source publishes for this weekday.
func (w Weekday) French() string {
	if w < Monday || w > Sunday {
		return ""
	}
	return weekdayFrench[w]
}

// Weekend reports whether the weekday is a Saturday or Sunday.
func (w Weekday) Weekend() bool {
	return w == Saturday || w == Sunday
}

func ParseWeekday(label string) (Weekday, error) {
	label = strings.TrimSpace(label)
	for i := Monday; i <= Sunday; i++ {
		if strings.EqualFold(label, weekdayFrench[i]) || strings.EqualFold(label, weekdayLabels[i]) {
			return i, nil
		}
	}
	return 0, ErrUnknownWeekday
}

// RoadType classifies the road an accident occurred on, collapsing the
// Belgian motorway, regional road and municipal road classes.
type RoadType int

const (
	Highway RoadType = iota
	Regional
	Urban
)

func (r RoadType) String() string {
	switch r {
	case Highway:
		return "highway"
	case Regional:
		return "regional"
	case Urban:
		return "urban"
	}
	return "unknown"
}

func (r RoadType) French() string {
	switch r {
	case Highway:
		return "Autoroute"
	case Regional:
		return "Route régionale"
	case Urban:
		return "Route communale"
	}
	return ""
}

func ParseRoadType(label string) (RoadType, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "autoroute", "highway":
		return Highway, nil
	case "route régionale", "route regionale", "route provinciale", "regional":
		return Regional, nil
	case "route communale", "urban":
		return Urban, nil
	}
	return 0, ErrUnknownRoadType
}

// RoadTypes lists all road type levels in declaration order. The first level
// acts as the dummy coding reference.
func RoadTypes() []RoadType {
	return []RoadType{Highway, Regional, Urban}
}

// Lighting is the light condition at the time of the accident.
type Lighting int

const (
	Daylight Lighting = iota
	Dusk
	NightLit
	NightUnlit
)

func (l Lighting) String() string {
	switch l {
	case Daylight:
		return "daylight"
	case Dusk:
		return "dusk"
	case NightLit:
		return "night_lit"
	case NightUnlit:
		return "night_unlit"
	}
	return "unknown"
}

func (l Lighting) French() string {
	switch l {
	case Daylight:
		return "Plein jour"
	case Dusk:
		return "Aube - crépuscule"
	case NightLit:
		return "Nuit, éclairage public allumé"
	case NightUnlit:
		return "Nuit, pas d'éclairage public"
	}
	return ""
}

func ParseLighting(label string) (Lighting, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "plein jour", "daylight":
		return Daylight, nil
	case "aube - crépuscule", "aube - crepuscule", "crépuscule - aube", "dusk":
		return Dusk, nil
	case "nuit, éclairage public allumé", "nuit, eclairage public allume", "night_lit":
		return NightLit, nil
	case "nuit, pas d'éclairage public", "nuit, pas d'eclairage public", "nuit, éclairage public éteint", "night_unlit":
		return NightUnlit, nil
	}
	return 0, ErrUnknownLighting
}

func Lightings() []Lighting {
	return []Lighting{Daylight, Dusk, NightLit, NightUnlit}
}

// CollisionType classifies the first collision of the accident. The published
// vocabulary varies by vintage so labels outside the head-on, side and
// rear-end classes fold into CollisionOther rather than failing the row.
type CollisionType int

const (
	HeadOn CollisionType = iota
	Side
	RearEnd
	CollisionOther
)

func (c CollisionType) String() string {
	switch c {
	case HeadOn:
		return "head_on"
	case Side:
		return "side"
	case RearEnd:
		return "rear_end"
	case CollisionOther:
		return "other"
	}
	return "unknown"
}

func (c CollisionType) French() string {
	switch c {
	case HeadOn:
		return "Collision frontale"
	case Side:
		return "Collision latérale"
	case RearEnd:
		return "Collision par l'arrière"
	case CollisionOther:
		return "Autre"
	}
	return ""
}

func ParseCollisionType(label string) CollisionType {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "collision frontale", "frontale", "head_on":
		return HeadOn
	case "collision latérale", "collision laterale", "latérale", "side":
		return Side
	case "collision par l'arrière", "collision par l'arriere", "par l'arrière", "rear_end":
		return RearEnd
	}
	return CollisionOther
}

func CollisionTypes() []CollisionType {
	return []CollisionType{HeadOn, Side, RearEnd, CollisionOther}
}

// Weather is the weather condition at the time of the accident. The column is
// optional in the published vintages, so unknown or missing labels fold into
// WeatherOther.
type Weather int

const (
	Dry Weather = iota
	Rain
	Fog
	Snow
	WeatherOther
)

func (w Weather) String() string {
	switch w {
	case Dry:
		return "dry"
	case Rain:
		return "rain"
	case Fog:
		return "fog"
	case Snow:
		return "snow"
	case WeatherOther:
		return "other"
	}
	return "unknown"
}

func (w Weather) French() string {
	switch w {
	case Dry:
		return "Normale"
	case Rain:
		return "Pluie"
	case Fog:
		return "Brouillard"
	case Snow:
		return "Chute de neige"
	case WeatherOther:
		return "Autre"
	}
	return ""
}

func ParseWeather(label string) Weather {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "normale", "normal", "dry":
		return Dry
	case "pluie", "rain":
		return Rain
	case "brouillard", "fog":
		return Fog
	case "chute de neige", "neige", "snow":
		return Snow
	}
	return WeatherOther
}

func Weathers() []Weather {
	return []Weather{Dry, Rain, Fog, Snow, WeatherOther}
}

// Severity is the worst outcome of the accident, ordered None < Injury <
// Fatal. It derives from the published casualty counts.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityInjury
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityInjury:
		return "injury"
	case SeverityFatal:
		return "fatal"
	}
	return "unknown"
}

// Fatal reports whether the accident had at least one death, including
// deaths within 30 days.
func (s Severity) Fatal() bool {
	return s == SeverityFatal
}

// Impairment carries the driver impairment flags published for the accident.
type Impairment struct {
	Alcohol bool `json:"alcohol"`
	Drugs   bool `json:"drugs"`
	Fatigue bool `json:"fatigue"`
}

// Any reports whether any impairment flag is set.
func (im Impairment) Any() bool {
	return im.Alcohol || im.Drugs || im.Fatigue
}

// ParseImpairment scans the published free-form impairment label for the
// known flags. An empty label means no recorded impairment.
func ParseImpairment(label string) Impairment {
	label = strings.ToLower(label)
	return Impairment{
		Alcohol: strings.Contains(label, "alcool") || strings.Contains(label, "alcohol"),
		Drugs:   strings.Contains(label, "drogue") || strings.Contains(label, "drug"),
		Fatigue: strings.Contains(label, "fatigue"),
	}
}

// AccidentRecord is one row of the accident dataset. Records are immutable
// once loaded.
type AccidentRecord struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Hour          int           `json:"hour"` // 1..24 as published
	Weekday       Weekday       `json:"weekday"`
	Municipality  string        `json:"municipality,omitempty"`
	RoadType      RoadType      `json:"road_type"`
	Weather       Weather       `json:"weather"`
	CollisionType CollisionType `json:"collision_type"`
	Lighting      Lighting      `json:"lighting"`
	BuiltUpArea   bool          `json:"built_up_area"`
	Impairment    Impairment    `json:"impairment"`
	Holiday       bool          `json:"holiday"`

	Casualties       int `json:"casualties"`
	Dead             int `json:"dead"`
	Dead30Days       int `json:"dead_30_days"`
	SeriouslyInjured int `json:"seriously_injured"`
	SlightlyInjured  int `json:"slightly_injured"`
}

// Severity derives the ordinal severity from the casualty counts.
func (r AccidentRecord) Severity() Severity {
	if r.Dead > 0 || r.Dead30Days > 0 {
		return SeverityFatal
	}
	if r.SeriouslyInjured > 0 || r.SlightlyInjured > 0 {
		return SeverityInjury
	}
	return SeverityNone
}
