package parking

type Rate struct {
	Hourly   float64
	DailyMax float64
}

type RateTable map[VehicleType]Rate

func DefaultRates() RateTable {
	return RateTable{
		Car:         {Hourly: 2.0, DailyMax: 24.0},
		Motorcycle:  {Hourly: 1.0, DailyMax: 12.0},
		Truck:       {Hourly: 4.0, DailyMax: 48.0},
		Handicapped: {Hourly: 1.0, DailyMax: 12.0},
	}
}

// clone copies the table so later edits by the caller do not leak in.
// Vehicle types missing from t, and fields left at zero, fall back to the
// defaults.
func (t RateTable) clone() RateTable {
	out := DefaultRates()
	for vt, r := range t {
		out[vt] = r.over(out[vt])
	}
	return out
}

// over fills the unset fields of r from base.
func (r Rate) over(base Rate) Rate {
	if r.Hourly == 0 {
		r.Hourly = base.Hourly
	}
	if r.DailyMax == 0 {
		r.DailyMax = base.DailyMax
	}
	return r
}
