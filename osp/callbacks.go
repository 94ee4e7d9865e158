package osp

// Callbacks is the embedder-facing notification surface: functions the
// engine invokes as decoded telemetry frames arrive.
type Callbacks struct {
	// Location is invoked once per decoded MID 41 geodetic nav frame,
	// with the satellite count used in the fix, latitude/longitude in
	// degrees*10^7, and the fix's UTC timestamp as a Unix time.
	Location func(svsInFix uint8, latE7, lonE7 int32, unixTime int64)

	// VisibleSatellites is invoked once per decoded MID 13 channel list.
	VisibleSatellites func(sats []VisibleSatellite)
}

func (c Callbacks) location(svsInFix uint8, latE7, lonE7 int32, unixTime int64) {
	if c.Location != nil {
		c.Location(svsInFix, latE7, lonE7, unixTime)
	}
}

func (c Callbacks) visibleSatellites(sats []VisibleSatellite) {
	if c.VisibleSatellites != nil {
		c.VisibleSatellites(sats)
	}
}
