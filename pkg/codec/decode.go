package codec

import (
	"encoding/binary"
	"math"

	"github.com/bluess57/gt7core/pkg/model"
)

// field offsets within the decrypted packet
const (
	offPositionX     = 0x04
	offPositionY     = 0x08
	offPositionZ     = 0x0C
	offRotationPitch = 0x1C
	offRotationYaw   = 0x20
	offRotationRoll  = 0x24
	offRideHeight    = 0x38
	offRPM           = 0x3C
	offCurrentFuel   = 0x44
	offFuelCapacity  = 0x48
	offCarSpeed      = 0x4C
	offBoost         = 0x50
	offTyreTempFL    = 0x60
	offTyreTempFR    = 0x64
	offTyreTempRL    = 0x68
	offTyreTempRR    = 0x6C
	offPackageID     = 0x70
	offCurrentLap    = 0x74
	offTotalLaps     = 0x76
	offBestLap       = 0x78
	offLastLap       = 0x7C
	offTopSpeed      = 0x8A
	offFlags         = 0x8E
	offGear          = 0x90
	offThrottle      = 0x91
	offBrake         = 0x92
	offWheelRPSFL    = 0xA4
	offWheelRPSFR    = 0xA8
	offWheelRPSRL    = 0xAC
	offWheelRPSRR    = 0xB0
	offTyreRadiusFL  = 0xB4
	offTyreRadiusFR  = 0xB8
	offTyreRadiusRL  = 0xBC
	offTyreRadiusRR  = 0xC0
	offCarID         = 0x124
)

func readFloat32(buf []byte, off int) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])))
}

func readInt32(buf []byte, off int) int32 {
	return int32(binary.LittleEndian.Uint32(buf[off:]))
}

func readInt16(buf []byte, off int) int {
	return int(int16(binary.LittleEndian.Uint16(buf[off:])))
}

// wheelSpeed converts a wheel angular speed (radians/s) and tyre radius
// into a ground speed in km/h.
func wheelSpeed(buf []byte, rpsOff, radiusOff int) float64 {
	return math.Abs(3.6 * readFloat32(buf, radiusOff) * readFloat32(buf, rpsOff))
}

// Decode decrypts a raw datagram and reads all known fields into a
// TelemetrySample. It is a pure function; decode failures mean the
// datagram is discarded, never that the stream is broken.
func Decode(raw []byte) (*model.TelemetrySample, error) {
	plain, err := Decrypt(raw)
	if err != nil {
		return nil, err
	}

	flags := plain[offFlags]
	gearByte := plain[offGear]

	sample := &model.TelemetrySample{
		PackageID:     readInt32(plain, offPackageID),
		BestLap:       readInt32(plain, offBestLap),
		LastLap:       readInt32(plain, offLastLap),
		CurrentLap:    readInt16(plain, offCurrentLap),
		TotalLaps:     readInt16(plain, offTotalLaps),
		InRace:        flags&0x01 != 0,
		IsPaused:      flags&0x02 != 0,
		CarSpeed:      3.6 * readFloat32(plain, offCarSpeed),
		Throttle:      float64(plain[offThrottle]) / 2.55,
		Brake:         float64(plain[offBrake]) / 2.55,
		RPM:           readFloat32(plain, offRPM),
		CurrentGear:   int(gearByte & 0x0F),
		SuggestedGear: int(gearByte >> 4),
		Boost:         readFloat32(plain, offBoost) - 1,
		CurrentFuel:   readFloat32(plain, offCurrentFuel),
		FuelCapacity:  readFloat32(plain, offFuelCapacity),
		WheelSpeed: model.CornerSet{
			FrontLeft:  wheelSpeed(plain, offWheelRPSFL, offTyreRadiusFL),
			FrontRight: wheelSpeed(plain, offWheelRPSFR, offTyreRadiusFR),
			RearLeft:   wheelSpeed(plain, offWheelRPSRL, offTyreRadiusRL),
			RearRight:  wheelSpeed(plain, offWheelRPSRR, offTyreRadiusRR),
		},
		TyreTemp: model.CornerSet{
			FrontLeft:  readFloat32(plain, offTyreTempFL),
			FrontRight: readFloat32(plain, offTyreTempFR),
			RearLeft:   readFloat32(plain, offTyreTempRL),
			RearRight:  readFloat32(plain, offTyreTempRR),
		},
		PositionX:         readFloat32(plain, offPositionX),
		PositionY:         readFloat32(plain, offPositionY),
		PositionZ:         readFloat32(plain, offPositionZ),
		RotationPitch:     readFloat32(plain, offRotationPitch),
		RotationYaw:       readFloat32(plain, offRotationYaw),
		RotationRoll:      readFloat32(plain, offRotationRoll),
		RideHeight:        1000 * readFloat32(plain, offRideHeight),
		CarID:             int(readInt32(plain, offCarID)),
		EstimatedTopSpeed: readInt16(plain, offTopSpeed),
	}
	return sample, nil
}
