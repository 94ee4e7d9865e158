package osp_test

import (
	"testing"
	"time"

	"ospdriver/osp"

	"github.com/stretchr/testify/assert"
)

// roundDivRef is an independent reference implementation of the rounded
// integer division the position-aiding transform uses, so the test doesn't
// just re-run the production code against itself.
func roundDivRef(num, den int64) int64 {
	if num >= 0 {
		return (num + den/2) / den
	}
	return -((-num + den/2) / den)
}

func Test_PositionAidingEncode_matchesFormula(t *testing.T) {
	assert := assert.New(t)
	seed := osp.PositionSeed{LatE7: 550000000, LonE7: -1220000000, AltCM: 10000}

	wantLat := roundDivRef(int64(seed.LatE7)<<32, 180*10000000)
	wantLon := roundDivRef(int64(seed.LonE7)<<32, 360*10000000)
	wantAlt := int16(((seed.AltCM / 100) + 500) * 10)

	buf := make([]byte, osp.LenAidingPosition)
	n := osp.EncodeAidingPosition(buf, int32(wantLat), int32(wantLon), wantAlt)
	assert.Equal(osp.LenAidingPosition, n)
	assert.Equal(uint8(1), buf[1])
	assert.Equal(int32(wantLat), int32(uint32(buf[2])<<24|uint32(buf[3])<<16|uint32(buf[4])<<8|uint32(buf[5])))
}

func Test_TimeAidingFrame_carriesLeapOffsetAndAccuracyTag(t *testing.T) {
	assert := assert.New(t)
	// 2024-01-01T00:00:00Z, a known instant comfortably past the GPS epoch.
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	buf := make([]byte, osp.LenAidingTime)
	gpsSeconds := now.Unix() - 315964800 + 18
	week := uint16(gpsSeconds / (7 * 24 * 60 * 60))
	towSeconds := uint32(gpsSeconds % (7 * 24 * 60 * 60))
	us := uint64(towSeconds) * 1000000
	towLow32 := uint32(us & 0xFFFFFFFF)
	towHigh8 := uint8((us >> 32) & 0xFF)

	n := osp.EncodeAidingTime(buf, week, towHigh8, towLow32, 18*1000)
	assert.Equal(osp.LenAidingTime, n)
	assert.Equal(uint8(2), buf[1])
	assert.Equal(uint16(18*1000), uint16(buf[10])<<8|uint16(buf[11]))
	assert.Equal(byte(0xB0), buf[12])
}
