package osp

// PositionSeed is a host-supplied seed position used to answer aiding
// requests before a fix is available.
type PositionSeed struct {
	LatE7  int32  // degrees * 10^7
	LonE7  int32  // degrees * 10^7
	AltCM  int32  // centimetres above mean sea level
	ErrHM  uint32 // horizontal error, metres
	ErrVM  uint32 // vertical error, metres
}

// cache holds the process-local seed position / clock drift state read by
// the aiding encoder and written by Init and (optionally) fresh fix
// reception. Guarded by Engine.cacheMu.
type cache struct {
	position   PositionSeed
	clockDrift int32
	valid      bool
}
