package osp

import "time"

/* ops.go : the host-initiated operations, each following the same
 * send -> install scanner -> wait -> interpret protocol via
 * Engine.transfer().
 */

// Init performs a cold init (the cold bit is always set; reset sets the
// system-reset bit), optionally seeding the cache with a known position and
// clock drift. A warm init is not available through this call.
func (e *Engine) Init(reset bool, seed *PositionSeed, clockDrift int32) error {
	if seed != nil {
		e.cacheMu.Lock()
		e.cache.position = *seed
		e.cache.clockDrift = clockDrift
		e.cache.valid = true
		e.cacheMu.Unlock()
	}

	buf := make([]byte, LenInit)
	EncodeInit(buf, InitFrame{Channels: 12, SystemReset: reset, Cold: true})

	var res ackResult
	err := e.transfer("init", buf, newAckScanner(&res), e.CommandTimeout)
	if err != nil {
		return err
	}
	if res.value != 0 {
		return errRetry("init", res.value)
	}
	return nil
}

// Factory performs a factory reset.
func (e *Engine) Factory(keepPROM, keepXOCW bool) error {
	buf := make([]byte, LenInit)
	EncodeInit(buf, InitFrame{
		Factory:  true,
		Protocol: 0,
		ClrXOCW:  !keepXOCW,
		KeepROM:  keepPROM,
	})

	var res ackResult
	err := e.transfer("factory", buf, newAckScanner(&res), e.CommandTimeout)
	if err != nil {
		return err
	}
	if res.value != 0 {
		return errRetry("factory", res.value)
	}
	return nil
}

// WaitForReady blocks until the receiver emits MID 18 (ok-to-send), or
// ReadyTimeout elapses.
func (e *Engine) WaitForReady() error {
	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return errBusy("wait_for_ready")
	}
	e.busy = true
	wake := make(chan struct{})
	e.scanner = okToSendScanner{}
	e.wake = wake
	e.mu.Unlock()

	var err error
	select {
	case <-wake:
	case <-time.After(e.ReadyTimeout):
		err = errTimeout("wait_for_ready")
	}

	e.mu.Lock()
	e.scanner = nil
	e.wake = nil
	e.busy = false
	e.mu.Unlock()
	return err
}

// OpenSession opens (or resumes) a session.
func (e *Engine) OpenSession(resume bool) error {
	buf := make([]byte, LenSessionControl)
	request := uint8(SessionOpenRequest)
	if resume {
		request = SessionResumeRequest
	}
	EncodeSessionControl(buf, SessionOpening, request)

	var res sessionResult
	err := e.transfer("open_session", buf, &sessionScanner{out: &res}, e.ReadyTimeout)
	if err != nil {
		return err
	}
	if res.sid != 1 || res.status != 0 {
		return errInvalid("open_session")
	}
	return nil
}

// CloseSession closes (or suspends) a session.
func (e *Engine) CloseSession(suspend bool) error {
	buf := make([]byte, LenSessionControl)
	request := uint8(SessionCloseRequest)
	if suspend {
		request = SessionSuspendRequest
	}
	EncodeSessionControl(buf, SessionClosing, request)

	var res sessionResult
	err := e.transfer("close_session", buf, &sessionScanner{out: &res}, e.ReadyTimeout)
	if err != nil {
		return err
	}
	if res.sid != 2 || res.status != 0 {
		return errInvalid("close_session")
	}
	return nil
}

// PwrPTF switches to push-to-fix power mode.
func (e *Engine) PwrPTF(period, maxSearch, maxOff uint32) error {
	buf := make([]byte, LenPwrPTF)
	EncodePwrPTF(buf, period, maxSearch, maxOff)

	var res pwrAckResult
	err := e.transfer("pwr_ptf", buf, &pwrAckScanner{out: &res}, e.CommandTimeout)
	if err != nil {
		return err
	}
	if res.sid != PwrSidPTF {
		return errInvalid("pwr_ptf")
	}
	if res.errorCode != 0 {
		return errDevice("pwr_ptf", res.errorCode)
	}
	return nil
}

// PwrFull switches to full-power mode.
//
// A prior revision of this call only checked the sub-ID and error code
// together, which meant a sub-ID mismatch paired with a zero error code was
// silently reported as success. This version returns INVALID whenever the
// acknowledged sub-ID isn't 0, regardless of the error code.
func (e *Engine) PwrFull() error {
	buf := make([]byte, LenPwrFull)
	EncodePwrFull(buf)

	var res pwrAckResult
	err := e.transfer("pwr_full", buf, &pwrAckScanner{out: &res}, e.CommandTimeout)
	if err != nil {
		return err
	}
	if res.sid != PwrSidFull {
		return errInvalid("pwr_full")
	}
	if res.errorCode != 0 {
		return errDevice("pwr_full", res.errorCode)
	}
	return nil
}

// AlmanacPoll downloads the full 896-byte almanac.
func (e *Engine) AlmanacPoll() ([]byte, error) {
	buf := make([]byte, LenAlmanacPoll)
	EncodeAlmanacPoll(buf, 0)

	scanner := &almanacPollScanner{}
	err := e.transfer("almanac_poll", buf, scanner, e.CommandTimeout)
	if err != nil {
		return nil, err
	}
	out := make([]byte, AlmanacBytes)
	copy(out, scanner.out[:])
	return out, nil
}

// AlmanacSet uploads a previously-downloaded 896-byte almanac blob.
func (e *Engine) AlmanacSet(almanac []byte) error {
	if len(almanac) != AlmanacBytes {
		return errInvalid("almanac_set")
	}
	buf := make([]byte, LenAlmanacUpload)
	EncodeAlmanacUpload(buf, almanac)

	var res ackResult
	err := e.transfer("almanac_set", buf, newAckScanner(&res), e.CommandTimeout)
	if err != nil {
		return err
	}
	if res.value != 0 {
		return errRetry("almanac_set", res.value)
	}
	return nil
}

// EphemerisPoll downloads ephemeris records (svid=0 polls every tracked SV).
func (e *Engine) EphemerisPoll(svid uint8) ([]EphemerisRecord, error) {
	buf := make([]byte, LenEphemerisPoll)
	EncodeEphemerisPoll(buf, svid)

	scanner := &ephPollScanner{}
	err := e.transfer("eph_poll", buf, scanner, e.CommandTimeout)
	if err != nil {
		return nil, err
	}
	return scanner.records, nil
}

// EphemerisSet uploads a single ephemeris record.
func (e *Engine) EphemerisSet(rec EphemerisRecord) error {
	buf := make([]byte, LenEphemerisUpl)
	EncodeEphemerisUpload(buf, rec)

	var res ackResult
	err := e.transfer("eph_set", buf, newAckScanner(&res), e.CommandTimeout)
	if err != nil {
		return err
	}
	if res.value != 0 {
		return errRetry("eph_set", res.value)
	}
	return nil
}

// EphemerisStatus requests per-SV ephemeris status. No reply is awaited,
// and the dispatcher has no handler for an ephemeris-status reply, so such
// a frame is dropped.
func (e *Engine) EphemerisStatus() error {
	buf := make([]byte, LenEphemerisStat)
	EncodeEphemerisStatus(buf, 2, 0xFF)
	return e.transfer("eph_status", buf, nil, 0)
}

// CW starts a continuous-wave interference scan. The wire protocol only
// encodes an auto-scan mode; enable is accepted for
// interface symmetry with a disable/enable call shape.
func (e *Engine) CW(enable bool) error {
	buf := make([]byte, LenCwScan)
	EncodeCwScan(buf, enable)
	return e.transfer("cw", buf, cwAckScanner{}, e.CommandTimeout)
}

// SetMsgRate configures the output rate of a given MID. No reply is
// awaited.
func (e *Engine) SetMsgRate(mid, mode, rate uint8) error {
	buf := make([]byte, LenSetMsgRate)
	EncodeSetMsgRate(buf, mode, mid, rate)
	return e.transfer("set_msg_rate", buf, nil, 0)
}

// Version polls the receiver's firmware version string.
func (e *Engine) Version() (string, error) {
	buf := make([]byte, LenVersionPoll)
	EncodeVersionPoll(buf)

	scanner := &versionScanner{}
	err := e.transfer("version", buf, scanner, e.CommandTimeout)
	if err != nil {
		return "", err
	}
	return scanner.out, nil
}
