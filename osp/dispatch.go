package osp

// dispatch.go : routes every inbound frame, first past the command
// engine's active scanner (if any), then to telemetry/aiding handlers.

// Dispatch is the transport's inbound delivery entry point: one call per
// decoded frame, called from the transport's reader goroutine. payload[0]
// is the MID; payload[1:] is the variant body.
func (e *Engine) Dispatch(payload []byte) {
	if len(payload) == 0 {
		return
	}
	mid := payload[0]

	e.mu.Lock()
	if e.scanner != nil {
		switch e.scanner.Scan(mid, payload) {
		case ScanFinished:
			w := e.wake
			e.scanner = nil
			e.wake = nil
			e.mu.Unlock()
			if w != nil {
				close(w)
			}
			return
		case ScanConsumed:
			e.mu.Unlock()
			return
		}
	}
	e.mu.Unlock()

	e.route(mid, payload)
}

// route handles frames the active scanner did not consume or finish on.
func (e *Engine) route(mid uint8, payload []byte) {
	switch mid {
	case MidMeasureNav:
		// telemetry no-op by default.
	case MidTrackerState:
		// telemetry no-op by default.
	case MidClockStatus:
		// telemetry no-op by default.
	case MidVisibleList:
		e.callbacks.visibleSatellites(DecodeVisibleList(payload))
	case MidNavLibData:
		// telemetry no-op by default.
	case MidGeodeticNav:
		e.handleGeodeticNav(payload)
	case MidHwConfigReq:
		e.handleHwConfigRequest()
	case MidAidingRequest:
		sid := DecodeAidingRequest(payload)
		e.handleAidingRequest(sid)
	}
}

func (e *Engine) handleGeodeticNav(payload []byte) {
	g := DecodeGeodeticNav(payload)

	if g.SVsInFix > 0 {
		e.cacheMu.Lock()
		e.cache.clockDrift = g.ClockDriftHz
		e.cacheMu.Unlock()
	}

	unixTime := geodeticUTCToUnix(g)
	e.callbacks.location(g.SVsInFix, g.LatitudeE7, g.LongitudeE7, unixTime)
}
