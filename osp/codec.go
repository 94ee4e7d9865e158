package osp

import "encoding/binary"

/* codec.go : byte-exact encode/decode of every OSP message variant.
 *
 * All multi-byte wire fields are big-endian. Each variant has a fixed
 * length; the transport framer supplies that length, this file only knows
 * how to lay fields out inside it.
 *
 * Field-extraction style (flat []byte buffer, index cursor, explicit
 * endianness) matches the rest of the receiver-decoder code this package
 * sits alongside.
 */

// Message IDs.
const (
	MidMeasureNav     = 2
	MidTrackerState   = 4
	MidClockStatus    = 7
	MidNavLibData     = 28
	MidVersion        = 6
	MidAck            = 11
	MidNack           = 12
	MidVisibleList    = 13
	MidAlmanacRow     = 14
	MidEphemerisRow   = 15
	MidOkToSend       = 18
	MidGeodeticNav    = 41
	MidHwConfigReq    = 71
	MidAidingRequest  = 73
	MidSessionResp    = 74
	MidCommandEcho    = 75
	MidPwrAck         = 90
	MidInit           = 128
	MidAlmanacUpload  = 130
	MidVersionPoll    = 132
	MidAlmanacPoll    = 146
	MidEphemerisPoll  = 147
	MidEphemerisUpl   = 149
	MidSetMsgRate     = 166
	MidSessionControl = 213
	MidHwConfigReply  = 214
	MidAiding         = 215
	MidAidingReject   = 216
	MidPowerMode      = 218
	MidCwScan         = 220
	MidEphemerisStat  = 232
)

// Session sub-IDs and requests.
const (
	SessionOpening = 1
	SessionClosing = 2

	SessionOpenRequest    = 1
	SessionResumeRequest  = 2
	SessionCloseRequest   = 1
	SessionSuspendRequest = 2
)

const (
	PwrSidFull = 0
	PwrSidPTF  = 4
)

const CwModeScanAuto = 1

// Fixed wire lengths (mid byte included).
const (
	LenInit           = 3
	LenAlmanacUpload  = 1 + AlmanacBytes
	LenVersionPoll    = 2
	LenAlmanacPoll    = 2
	LenEphemerisPoll  = 2
	LenEphemerisUpl   = 1 + 45*2
	LenSetMsgRate     = 4
	LenSessionControl = 3
	LenHwConfigReply  = 5
	LenAidingPosition = 16
	LenAidingTime     = 13
	LenAidingReject   = 5
	LenPwrFull        = 2
	LenPwrPTF         = 14
	LenCwScan         = 3
	LenEphemerisStat  = 6

	LenAck         = 2
	LenNack        = 2
	LenAlmanacRow  = 1 + 1 + 28
	LenEphRow      = 1 + 1 + 45*2
	LenOkToSend    = 1
	LenGeodeticNav = 38
	LenHwConfigReq = 1
	LenAidingReq   = 2
	LenSessionResp = 3
	LenCommandEcho = 5
	LenPwrAckIn    = 3
	MaxVersionLen  = 80

	// MaxFrameLen is sized for the largest single frame this driver ever
	// sends or receives: the almanac upload (mid byte plus the 896-byte
	// blob).
	MaxFrameLen = LenAlmanacUpload
)

const AlmanacBytes = 28 * 32
const AlmanacRowBytes = 28
const EphemerisWords = 45

// ---- outbound encoders -----------------------------------------------

// InitFrame is the MID 128 payload for both cold/warm init and factory
// reset.
type InitFrame struct {
	Channels    uint8
	SystemReset bool
	Cold        bool
	Factory     bool
	Protocol    uint8 // 2 bits
	ClrXOCW     bool
	KeepROM     bool
}

// EncodeInit writes the MID 128 payload. Byte layout: mid, channels, flags —
// flags is a single packed byte, chosen so that an all-zero-except-reset/cold
// frame begins "80 0C" for 12 channels.
func EncodeInit(buf []byte, f InitFrame) int {
	buf[0] = MidInit
	buf[1] = f.Channels
	var flags uint8
	if f.SystemReset {
		flags |= 1 << 0
	}
	if f.Cold {
		flags |= 1 << 1
	}
	if f.Factory {
		flags |= 1 << 2
	}
	if f.ClrXOCW {
		flags |= 1 << 3
	}
	if f.KeepROM {
		flags |= 1 << 4
	}
	flags |= (f.Protocol & 0x3) << 5
	buf[2] = flags
	return LenInit
}

// EncodeAlmanacUpload writes MID 130: the full 896-byte almanac blob, 32
// rows of 28 bytes indexed by svid-1.
func EncodeAlmanacUpload(buf []byte, almanac []byte) int {
	buf[0] = MidAlmanacUpload
	copy(buf[1:1+AlmanacBytes], almanac)
	return LenAlmanacUpload
}

// EncodeVersionPoll writes MID 132.
func EncodeVersionPoll(buf []byte) int {
	buf[0] = MidVersionPoll
	buf[1] = 0
	return LenVersionPoll
}

// EncodeAlmanacPoll writes MID 146.
func EncodeAlmanacPoll(buf []byte, control uint8) int {
	buf[0] = MidAlmanacPoll
	buf[1] = control
	return LenAlmanacPoll
}

// EncodeEphemerisPoll writes MID 147.
func EncodeEphemerisPoll(buf []byte, svid uint8) int {
	buf[0] = MidEphemerisPoll
	buf[1] = svid
	return LenEphemerisPoll
}

// EncodeEphemerisUpload writes MID 149: the 45 subframe words only. The svid
// in rec identifies which in-memory/persisted record this came from but has
// no place on the wire.
func EncodeEphemerisUpload(buf []byte, rec EphemerisRecord) int {
	buf[0] = MidEphemerisUpl
	for i, w := range rec.Data {
		binary.BigEndian.PutUint16(buf[1+i*2:], w)
	}
	return LenEphemerisUpl
}

// EncodeSetMsgRate writes MID 166.
func EncodeSetMsgRate(buf []byte, mode, mid, rate uint8) int {
	buf[0] = MidSetMsgRate
	buf[1] = mode
	buf[2] = mid
	buf[3] = rate
	return LenSetMsgRate
}

// EncodeSessionControl writes MID 213.
func EncodeSessionControl(buf []byte, sid, request uint8) int {
	buf[0] = MidSessionControl
	buf[1] = sid
	buf[2] = request
	return LenSessionControl
}

// HwConfig is the MID 214 reply payload.
type HwConfig struct {
	RTCAvailable bool
	RTCInternal  bool
	CoarseTimeTA bool
}

// EncodeHwConfigReply writes MID 214.
func EncodeHwConfigReply(buf []byte, c HwConfig) int {
	buf[0] = MidHwConfigReply
	var flags uint8
	if c.RTCAvailable {
		flags |= 1 << 0
	}
	if c.RTCInternal {
		flags |= 1 << 1
	}
	if c.CoarseTimeTA {
		flags |= 1 << 2
	}
	buf[1] = flags
	buf[2], buf[3], buf[4] = 0, 0, 0
	return LenHwConfigReply
}

// EncodeAidingPosition writes MID 215 sub-ID 1 from already-computed wire
// values; the lat/lon/alt transform itself lives in aiding.go.
func EncodeAidingPosition(buf []byte, lat, lon int32, alt int16) int {
	buf[0] = MidAiding
	buf[1] = 1
	binary.BigEndian.PutUint32(buf[2:], uint32(lat))
	binary.BigEndian.PutUint32(buf[6:], uint32(lon))
	binary.BigEndian.PutUint16(buf[10:], uint16(alt))
	buf[12] = 0x50 // est_hor_err, ~120m
	binary.BigEndian.PutUint16(buf[13:], 100) // est_ver_err, decimetres
	buf[15] = 0                               // use_alt_aiding = false
	return LenAidingPosition
}

// EncodeAidingTime writes MID 215 sub-ID 2. towHigh8/towLow32 is the 40-bit
// big-endian time-of-week-in-microseconds split.
func EncodeAidingTime(buf []byte, week uint16, towHigh8 uint8, towLow32 uint32, deltaUTCms uint16) int {
	buf[0] = MidAiding
	buf[1] = 2
	buf[2] = 0 // tt_type = coarse
	binary.BigEndian.PutUint16(buf[3:], week)
	buf[5] = towHigh8
	binary.BigEndian.PutUint32(buf[6:], towLow32)
	binary.BigEndian.PutUint16(buf[10:], deltaUTCms)
	buf[12] = 0xB0 // time_accuracy
	return LenAidingTime
}

// EncodeAidingReject writes MID 216.
func EncodeAidingReject(buf []byte, sid, rmid, rsid, reason uint8) int {
	buf[0] = MidAidingReject
	buf[1] = sid
	buf[2] = rmid
	buf[3] = rsid
	buf[4] = reason
	return LenAidingReject
}

// EncodePwrFull writes MID 218 sid=0 (full power).
func EncodePwrFull(buf []byte) int {
	buf[0] = MidPowerMode
	buf[1] = PwrSidFull
	return LenPwrFull
}

// EncodePwrPTF writes MID 218 sid=4 (push-to-fix).
func EncodePwrPTF(buf []byte, period, maxSearch, maxOff uint32) int {
	buf[0] = MidPowerMode
	buf[1] = PwrSidPTF
	binary.BigEndian.PutUint32(buf[2:], period)
	binary.BigEndian.PutUint32(buf[6:], maxSearch)
	binary.BigEndian.PutUint32(buf[10:], maxOff)
	return LenPwrPTF
}

// EncodeCwScan writes MID 220. enable is accepted for interface symmetry
// with a disable/enable call shape, but the wire protocol only has an
// auto-scan mode.
func EncodeCwScan(buf []byte, enable bool) int {
	buf[0] = MidCwScan
	buf[1] = 1
	buf[2] = CwModeScanAuto
	if !enable {
		Tracef(3, "osp: CW scan has no disable encoding, sending auto-scan anyway")
	}
	return LenCwScan
}

// EncodeEphemerisStatus writes MID 232.
func EncodeEphemerisStatus(buf []byte, sid uint8, svidMask uint32) int {
	buf[0] = MidEphemerisStat
	buf[1] = sid
	binary.BigEndian.PutUint32(buf[2:], svidMask)
	return LenEphemerisStat
}

// ---- inbound decoders --------------------------------------------------

// DecodeVersion returns the version string from a MID 6 payload (up to 80
// bytes after the mid byte).
func DecodeVersion(buf []byte) string {
	n := len(buf) - 1
	if n > MaxVersionLen {
		n = MaxVersionLen
	}
	if n < 0 {
		n = 0
	}
	end := 1 + n
	for end > 1 && buf[end-1] == 0 {
		end--
	}
	return string(buf[1:end])
}

// DecodeAck returns the MID 11 sub-ID.
func DecodeAck(buf []byte) uint8 { return buf[1] }

// DecodeNack returns the MID 12 nacid.
func DecodeNack(buf []byte) uint8 { return buf[1] }

// VisibleSatellite is one channel entry from MID 13.
type VisibleSatellite struct {
	SVID      uint8
	Azimuth   uint16
	Elevation uint16
}

// DecodeVisibleList decodes MID 13.
func DecodeVisibleList(buf []byte) []VisibleSatellite {
	n := int(buf[1])
	out := make([]VisibleSatellite, 0, n)
	for i := 0; i < n; i++ {
		off := 2 + i*5
		out = append(out, VisibleSatellite{
			SVID:      buf[off],
			Azimuth:   binary.BigEndian.Uint16(buf[off+1:]),
			Elevation: binary.BigEndian.Uint16(buf[off+3:]),
		})
	}
	return out
}

// DecodeAlmanacRow returns the svid and 28-byte row from MID 14.
func DecodeAlmanacRow(buf []byte) (svid uint8, row [AlmanacRowBytes]byte) {
	svid = buf[1]
	copy(row[:], buf[2:2+AlmanacRowBytes])
	return
}

// EphemerisRecord is a single tracking channel's raw subframe content.
type EphemerisRecord struct {
	SVID uint8
	Data [EphemerisWords]uint16
}

// DecodeEphemerisRow decodes MID 15.
func DecodeEphemerisRow(buf []byte) EphemerisRecord {
	var rec EphemerisRecord
	rec.SVID = buf[1]
	for i := 0; i < EphemerisWords; i++ {
		rec.Data[i] = binary.BigEndian.Uint16(buf[2+i*2:])
	}
	return rec
}

// GeodeticNav is the decoded MID 41 payload.
type GeodeticNav struct {
	Year                           uint16
	Month, Day, Hour, Minute       uint8
	SecondMS                       uint16
	NavValid, NavType              uint16
	SVsInFix                       uint8
	LatitudeE7, LongitudeE7        int32
	AltitudeMSLcm                  int32
	EstHPosErrorCM, EstVPosErrorCM uint32
	ClockDriftHz                   int32
}

// DecodeGeodeticNav decodes MID 41.
func DecodeGeodeticNav(buf []byte) GeodeticNav {
	var g GeodeticNav
	g.Year = binary.BigEndian.Uint16(buf[1:])
	g.Month = buf[3]
	g.Day = buf[4]
	g.Hour = buf[5]
	g.Minute = buf[6]
	g.SecondMS = binary.BigEndian.Uint16(buf[7:])
	g.NavValid = binary.BigEndian.Uint16(buf[9:])
	g.NavType = binary.BigEndian.Uint16(buf[11:])
	g.SVsInFix = buf[13]
	g.LatitudeE7 = int32(binary.BigEndian.Uint32(buf[14:]))
	g.LongitudeE7 = int32(binary.BigEndian.Uint32(buf[18:]))
	g.AltitudeMSLcm = int32(binary.BigEndian.Uint32(buf[22:]))
	g.EstHPosErrorCM = binary.BigEndian.Uint32(buf[26:])
	g.EstVPosErrorCM = binary.BigEndian.Uint32(buf[30:])
	g.ClockDriftHz = int32(binary.BigEndian.Uint32(buf[34:]))
	return g
}

// DecodeAidingRequest decodes MID 73.
func DecodeAidingRequest(buf []byte) (sid uint8) { return buf[1] }

// DecodeSessionResponse decodes MID 74.
func DecodeSessionResponse(buf []byte) (sid, status uint8) { return buf[1], buf[2] }

// DecodeCommandEcho decodes MID 75.
func DecodeCommandEcho(buf []byte) (sid, echoMid, echoSid, ack uint8) {
	return buf[1], buf[2], buf[3], buf[4]
}

// DecodePwrAck decodes MID 90.
func DecodePwrAck(buf []byte) (sid, errorCode uint8) { return buf[1], buf[2] }
