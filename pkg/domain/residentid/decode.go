package residentid

import "time"

// Sex is derived from the parity of the sequence code.
type Sex int

const (
	Female Sex = iota
	Male
)

func (s Sex) String() string {
	if s == Male {
		return "male"
	}
	return "female"
}

// Label returns the sex as printed on the card.
func (s Sex) Label() string {
	if s == Male {
		return "男"
	}
	return "女"
}

// Region is the administrative division a region code resolves to.
// Prefecture and County are empty for province- or prefecture-level codes.
type Region struct {
	Province   string
	Prefecture string
	County     string
	// Source tags the data release the entry came from.
	Source string
}

// UnknownRegion is substituted when a region code is not in the table.
var UnknownRegion = Region{Province: "-", Prefecture: "-", County: "-", Source: "-"}

// RegionTable is the read-only region code lookup supplied by the caller.
type RegionTable interface {
	Lookup(code string) (Region, bool)
}

// Decoded bundles the attributes extracted from a valid number.
type Decoded struct {
	Number       Number
	RegionCode   string
	ProvinceCode string
	Region       Region
	RegionKnown  bool
	BirthDate    BirthDate
	Sex          Sex
}

// AgeAt returns the holder's age in completed years at now.
func (d Decoded) AgeAt(now time.Time) int {
	return d.BirthDate.AgeAt(now)
}

// Decode extracts region, birth date and sex from n. A region miss, or a nil
// table, yields UnknownRegion rather than an error. n must come from
// Validate; Decode does not re-check it.
func Decode(n Number, table RegionTable) Decoded {
	out := Decoded{
		Number:       n,
		RegionCode:   n.RegionCode(),
		ProvinceCode: n.ProvinceCode(),
		Region:       UnknownRegion,
		BirthDate:    n.BirthDate(),
		Sex:          n.Sex(),
	}
	if table == nil {
		return out
	}
	if region, ok := table.Lookup(out.RegionCode); ok {
		out.Region = region
		out.RegionKnown = true
	}
	return out
}
