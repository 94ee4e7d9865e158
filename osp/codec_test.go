package osp_test

import (
	"testing"

	"ospdriver/osp"

	"github.com/stretchr/testify/assert"
)

func Test_EncodeInit_defaultColdReset(t *testing.T) {
	assert := assert.New(t)
	buf := make([]byte, osp.LenInit)
	n := osp.EncodeInit(buf, osp.InitFrame{Channels: 12, SystemReset: true, Cold: true})
	assert.Equal(osp.LenInit, n)
	assert.Equal(byte(0x80), buf[0])
	assert.Equal(byte(0x0C), buf[1])
	assert.Equal(byte(0x03), buf[2]) // reset bit | cold bit
}

func Test_EncodeAlmanacUpload_roundTrip(t *testing.T) {
	assert := assert.New(t)
	almanac := make([]byte, osp.AlmanacBytes)
	for i := range almanac {
		almanac[i] = byte(i)
	}
	buf := make([]byte, osp.LenAlmanacUpload)
	osp.EncodeAlmanacUpload(buf, almanac)
	assert.Equal(byte(osp.MidAlmanacUpload), buf[0])
	assert.Equal(almanac, buf[1:])
}

func Test_DecodeAlmanacRow_indexesBySVID(t *testing.T) {
	assert := assert.New(t)
	buf := make([]byte, osp.LenAlmanacRow)
	buf[0] = byte(osp.MidAlmanacRow)
	buf[1] = 7
	for i := 0; i < osp.AlmanacRowBytes; i++ {
		buf[2+i] = byte(i + 1)
	}
	svid, row := osp.DecodeAlmanacRow(buf)
	assert.Equal(uint8(7), svid)
	assert.Equal(byte(1), row[0])
	assert.Equal(byte(osp.AlmanacRowBytes), row[osp.AlmanacRowBytes-1])
}

func Test_EphemerisUpload_roundTrip(t *testing.T) {
	assert := assert.New(t)
	rec := osp.EphemerisRecord{SVID: 3}
	for i := range rec.Data {
		rec.Data[i] = uint16(i * 7)
	}
	buf := make([]byte, osp.LenEphemerisUpl)
	osp.EncodeEphemerisUpload(buf, rec)
	assert.Equal(osp.LenEphemerisUpl, 1+45*2)

	decodeBuf := make([]byte, osp.LenEphRow)
	decodeBuf[0] = byte(osp.MidEphemerisRow)
	decodeBuf[1] = rec.SVID
	copy(decodeBuf[2:], buf[1:])
	got := osp.DecodeEphemerisRow(decodeBuf)
	assert.Equal(rec, got)
}

func Test_DecodeVersion_trimsTrailingZeros(t *testing.T) {
	assert := assert.New(t)
	buf := make([]byte, 1+10)
	buf[0] = byte(osp.MidVersion)
	copy(buf[1:], "GSW3")
	assert.Equal("GSW3", osp.DecodeVersion(buf))
}

func Test_DecodeGeodeticNav_fieldsLineUp(t *testing.T) {
	assert := assert.New(t)
	buf := make([]byte, osp.LenGeodeticNav)
	buf[0] = byte(osp.MidGeodeticNav)
	buf[1], buf[2] = 0x07, 0xE8 // year = 2024
	buf[3] = 6                 // month
	buf[4] = 15                // day
	buf[5] = 12                // hour
	buf[6] = 30                // minute
	buf[7], buf[8] = 0x17, 0x70 // second*1000 = 6000ms
	buf[13] = 8                 // svs in fix
	g := osp.DecodeGeodeticNav(buf)
	assert.Equal(uint16(2024), g.Year)
	assert.Equal(uint8(6), g.Month)
	assert.Equal(uint8(15), g.Day)
	assert.Equal(uint8(12), g.Hour)
	assert.Equal(uint8(30), g.Minute)
	assert.Equal(uint16(6000), g.SecondMS)
	assert.Equal(uint8(8), g.SVsInFix)
}

func Test_DecodeSessionResponse_andCommandEcho(t *testing.T) {
	assert := assert.New(t)
	buf := []byte{byte(osp.MidSessionResp), 1, 0}
	sid, status := osp.DecodeSessionResponse(buf)
	assert.Equal(uint8(1), sid)
	assert.Equal(uint8(0), status)

	echo := []byte{byte(osp.MidCommandEcho), 2, 213, 1, 0}
	sid2, mid, esid, ack := osp.DecodeCommandEcho(echo)
	assert.Equal(uint8(2), sid2)
	assert.Equal(uint8(213), mid)
	assert.Equal(uint8(1), esid)
	assert.Equal(uint8(0), ack)
}
