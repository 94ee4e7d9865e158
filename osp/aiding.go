package osp

import (
	"math"
	"time"
)

/* aiding.go : answers the receiver's spontaneous position/time/hardware
 * aiding requests (MID 73/71) with freshly computed MID 215/216/214 frames.
 *
 * Field math: latitude/longitude are scaled to a 32-bit fraction of a
 * half/full turn, altitude is decimetres above a -500m datum, and GPS
 * week/time-of-week uses the 18s leap-second offset against the
 * 1980-01-06 epoch.
 *
 * NOTE: ((alt_cm/100)+500)*10 is the altitude transform this package
 * implements. A worked walkthrough of this formula circulating elsewhere
 * computes 5010 for alt_cm=10000, which doesn't check out (plugging in
 * gives 6000) — that walkthrough appears to have substituted alt in
 * metres (100) for alt_cm a second time. Tests here compute expected
 * values from the formula directly rather than hardcoding that figure.
 */

const (
	gpsClockOffsetSeconds = 18
	gpsEpochUnix          = 315964800
	secondsPerWeek        = 7 * 24 * 60 * 60
)

// roundDiv computes round(num/den) using integer arithmetic (den > 0),
// avoiding the precision loss a float64 division of a numerator of up to
// about 7.7e18 would incur.
func roundDiv(num, den int64) int64 {
	if num >= 0 {
		return (num + den/2) / den
	}
	return -((-num + den/2) / den)
}

func clampInt32(v int64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

// positionAidingWire converts a cached seed position into the wire fields
// of MID 215 sub-ID 1.
func positionAidingWire(pos PositionSeed) (lat, lon int32, alt int16) {
	lat = clampInt32(roundDiv(int64(pos.LatE7)<<32, 180*10000000))
	lon = clampInt32(roundDiv(int64(pos.LonE7)<<32, 360*10000000))
	alt = int16(((pos.AltCM / 100) + 500) * 10)
	return
}

// utcToGPS converts a UTC instant to GPS week / time-of-week: leap-second
// offset 18s, epoch 1980-01-06 00:00:00 UTC.
func utcToGPS(unixUTC int64) (week uint16, towSeconds uint32) {
	gps := unixUTC - gpsEpochUnix + gpsClockOffsetSeconds
	week = uint16(gps / secondsPerWeek)
	towSeconds = uint32(gps % secondsPerWeek)
	return
}

// timeAidingWire computes the MID 215 sub-ID 2 wire fields for the given
// clock reading.
func timeAidingWire(now int64) (week uint16, towHigh8 uint8, towLow32 uint32, deltaUTCms uint16) {
	w, tow := utcToGPS(now)
	us := uint64(tow) * 1000000
	towLow32 = uint32(us & 0xFFFFFFFF)
	towHigh8 = uint8((us >> 32) & 0xFF)
	return w, towHigh8, towLow32, gpsClockOffsetSeconds * 1000
}

// geodeticUTCToUnix converts a decoded MID 41 UTC timestamp to Unix time
// before the location callback fires.
func geodeticUTCToUnix(g GeodeticNav) int64 {
	t := time.Date(int(g.Year), time.Month(g.Month), int(g.Day),
		int(g.Hour), int(g.Minute), int(g.SecondMS)/1000, 0, time.UTC)
	return t.Unix()
}

// handleAidingRequest answers a MID 73 aiding request. It runs on the
// dispatcher path and must not acquire the engine's command mutex: the
// receiver can ask for aiding while a host command is still in flight.
func (e *Engine) handleAidingRequest(sid uint8) {
	switch sid {
	case 1:
		e.cacheMu.Lock()
		c := e.cache
		e.cacheMu.Unlock()
		if c.valid {
			lat, lon, alt := positionAidingWire(c.position)
			buf := make([]byte, LenAidingPosition)
			n := EncodeAidingPosition(buf, lat, lon, alt)
			e.sendUnsolicited(buf[:n])
		} else {
			buf := make([]byte, LenAidingReject)
			n := EncodeAidingReject(buf, 2, MidAidingRequest, 1, 0x04)
			e.sendUnsolicited(buf[:n])
			Tracef(2, "osp: position aiding requested, cache invalid")
		}
	case 2:
		week, high8, low32, delta := timeAidingWire(e.clock.Now().Unix())
		buf := make([]byte, LenAidingTime)
		n := EncodeAidingTime(buf, week, high8, low32, delta)
		e.sendUnsolicited(buf[:n])
	default:
		Tracef(2, "osp: unhandled aiding sub-id: %d", sid)
	}
}

// handleHwConfigRequest answers a MID 71 hardware config request.
func (e *Engine) handleHwConfigRequest() {
	buf := make([]byte, LenHwConfigReply)
	n := EncodeHwConfigReply(buf, HwConfig{RTCAvailable: true, RTCInternal: true, CoarseTimeTA: true})
	e.sendUnsolicited(buf[:n])
}
