package driver

import (
	"errors"
	"math"

	"github.com/teslashibe/go-cobot/pkg/arm"
)

// myCobot 280 serial protocol. A frame is:
//
//	0xFE 0xFE <len> <cmd> <data...> 0xFA
//
// where len counts cmd, data and the footer. Angles travel as big-endian
// int16 centidegrees.
const (
	frameHeader = 0xFE
	frameFooter = 0xFA

	cmdPowerOn    = 0x10
	cmdGetAngles  = 0x20
	cmdSendAngle  = 0x21
	cmdSendAngles = 0x22
	cmdSetColor   = 0x6A
)

var errBadFrame = errors.New("driver: malformed frame")

// encodeFrame wraps cmd and data in the wire framing.
func encodeFrame(cmd byte, data []byte) []byte {
	frame := make([]byte, 0, len(data)+5)
	frame = append(frame, frameHeader, frameHeader, byte(len(data)+2), cmd)
	frame = append(frame, data...)
	return append(frame, frameFooter)
}

// decodeFrame finds the first complete frame in buf and returns its command
// and payload, plus the number of bytes consumed. A zero consumed count
// means more input is needed.
func decodeFrame(buf []byte) (cmd byte, data []byte, consumed int, err error) {
	// Resync on the double header; serial noise is common right after the
	// port opens.
	start := -1
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == frameHeader && buf[i+1] == frameHeader {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, nil, 0, nil
	}
	if len(buf) < start+3 {
		return 0, nil, 0, nil
	}
	length := int(buf[start+2])
	end := start + 3 + length
	if length < 2 || end > len(buf) {
		if length < 2 {
			return 0, nil, start + 2, errBadFrame
		}
		return 0, nil, 0, nil
	}
	if buf[end-1] != frameFooter {
		return 0, nil, start + 2, errBadFrame
	}
	cmd = buf[start+3]
	payload := buf[start+4 : end-1]
	return cmd, payload, end, nil
}

// encodeAngle converts degrees to the wire int16 centidegree pair,
// rounding to the nearest centidegree.
func encodeAngle(deg float64) (hi, lo byte) {
	v := int16(math.Round(deg * 100))
	return byte(uint16(v) >> 8), byte(uint16(v))
}

// decodeAngle converts a wire centidegree pair back to degrees.
func decodeAngle(hi, lo byte) float64 {
	return float64(int16(uint16(hi)<<8|uint16(lo))) / 100
}

// decodeAngles unpacks a GetAngles payload (6 × int16) into a pose.
func decodeAngles(data []byte) (arm.Pose, error) {
	var pose arm.Pose
	if len(data) < 2*arm.NumJoints {
		return pose, errBadFrame
	}
	for i := 0; i < arm.NumJoints; i++ {
		pose[i] = decodeAngle(data[2*i], data[2*i+1])
	}
	return pose, nil
}
