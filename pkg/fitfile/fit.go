package fitfile

import (
	"bytes"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/filedef"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/untyped/mesgnum"
	"github.com/muktihari/fit/proto"
)

// FIT invalid sentinels for the unsigned base types used by the session message.
const (
	invalidUint8  = 0xFF
	invalidUint16 = 0xFFFF
	invalidUint32 = 0xFFFFFFFF
)

const (
	parserStrict     = "fit"
	parserPermissive = "fit-permissive"
)

// decodeStrict runs the full decoder with checksum verification and reads the first session.
func decodeStrict(data []byte) (*mesgdef.Session, error) {
	dec := decoder.New(bytes.NewReader(data))
	for dec.Next() {
		fit, err := dec.Decode()
		if err != nil {
			return nil, err
		}
		activity := filedef.NewActivity(fit.Messages...)
		if len(activity.Sessions) > 0 {
			return activity.Sessions[0], nil
		}
	}
	return nil, ErrNoSession
}

// sessionCapture keeps the first session message seen while streaming.
type sessionCapture struct {
	session *mesgdef.Session
}

func (c *sessionCapture) OnMesg(mesg proto.Message) {
	if c.session != nil || mesg.Num != mesgnum.Session {
		return
	}
	c.session = mesgdef.NewSession(&mesg)
}

// decodePermissive ignores checksums and keeps whatever session message was decoded
// before the stream broke.
func decodePermissive(data []byte) (*mesgdef.Session, error) {
	capture := &sessionCapture{}
	dec := decoder.New(bytes.NewReader(data),
		decoder.WithIgnoreChecksum(),
		decoder.WithMesgListener(capture),
	)

	var streamErr error
	for dec.Next() {
		if _, err := dec.Decode(); err != nil {
			streamErr = err
			break
		}
	}

	if capture.session != nil {
		return capture.session, nil
	}
	if streamErr != nil {
		return nil, streamErr
	}
	return nil, ErrNoSession
}

func activityFromSession(path, hash, parser string, s *mesgdef.Session) *Activity {
	a := &Activity{
		Path:        path,
		ContentHash: hash,
		Parser:      parser,
		Sport:       s.Sport.String(),
		SubSport:    s.SubSport.String(),
		StartTime:   s.StartTime,
	}
	if s.TotalElapsedTime != invalidUint32 {
		a.ElapsedSeconds = float64(s.TotalElapsedTime) / 1000
	}
	if s.TotalTimerTime != invalidUint32 {
		v := float64(s.TotalTimerTime) / 1000
		a.TimerSeconds = &v
	}
	if s.TotalDistance != invalidUint32 {
		v := float64(s.TotalDistance) / 100
		a.DistanceMeters = &v
	}
	if s.TotalAscent != invalidUint16 {
		v := float64(s.TotalAscent)
		a.AscentMeters = &v
	}
	if s.AvgHeartRate != invalidUint8 {
		v := float64(s.AvgHeartRate)
		a.AvgHeartRate = &v
	}
	if s.MaxHeartRate != invalidUint8 {
		v := float64(s.MaxHeartRate)
		a.MaxHeartRate = &v
	}
	return a
}

// DecodeFIT tries the strict decoder first, then the permissive one.
func DecodeFIT(path string, data []byte) (*Activity, error) {
	hash := ContentHash(data)

	session, primaryErr := decodeStrict(data)
	if primaryErr == nil {
		return activityFromSession(path, hash, parserStrict, session), nil
	}

	session, fallbackErr := decodePermissive(data)
	if fallbackErr == nil {
		return activityFromSession(path, hash, parserPermissive, session), nil
	}

	return nil, &DecodeError{Path: path, Primary: primaryErr, Fallback: fallbackErr}
}
