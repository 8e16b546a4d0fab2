package codec

import (
	"encoding/binary"
	"math"

	"github.com/bluess57/gt7core/pkg/model"
)

func writeFloat32(buf []byte, off int, val float64) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(val)))
}

// tyre radius used when synthesizing packets; the decoder only sees the
// product of radius and angular speed.
const encodeTyreRadius = 0.3

func writeWheelSpeed(buf []byte, rpsOff, radiusOff int, kmh float64) {
	writeFloat32(buf, radiusOff, encodeTyreRadius)
	writeFloat32(buf, rpsOff, kmh/3.6/encodeTyreRadius)
}

// Encode builds an encrypted datagram carrying the given sample. It is the
// counterpart of Decode and exists for tests and for simulating a console
// on the wire.
func Encode(sample *model.TelemetrySample, seed uint32) ([]byte, error) {
	plain := make([]byte, PacketSize)
	binary.LittleEndian.PutUint32(plain[0:], Magic)
	binary.LittleEndian.PutUint32(plain[seedOffset:], seed)

	binary.LittleEndian.PutUint32(plain[offPackageID:], uint32(sample.PackageID))
	binary.LittleEndian.PutUint32(plain[offBestLap:], uint32(sample.BestLap))
	binary.LittleEndian.PutUint32(plain[offLastLap:], uint32(sample.LastLap))
	binary.LittleEndian.PutUint16(plain[offCurrentLap:], uint16(sample.CurrentLap))
	binary.LittleEndian.PutUint16(plain[offTotalLaps:], uint16(sample.TotalLaps))
	binary.LittleEndian.PutUint16(plain[offTopSpeed:], uint16(sample.EstimatedTopSpeed))
	binary.LittleEndian.PutUint32(plain[offCarID:], uint32(sample.CarID))

	var flags byte
	if sample.InRace {
		flags |= 0x01
	}
	if sample.IsPaused {
		flags |= 0x02
	}
	plain[offFlags] = flags
	plain[offGear] = byte(sample.CurrentGear&0x0F) | byte(sample.SuggestedGear<<4)
	plain[offThrottle] = byte(math.Round(sample.Throttle * 2.55))
	plain[offBrake] = byte(math.Round(sample.Brake * 2.55))

	writeFloat32(plain, offCarSpeed, sample.CarSpeed/3.6)
	writeFloat32(plain, offRPM, sample.RPM)
	writeFloat32(plain, offBoost, sample.Boost+1)
	writeFloat32(plain, offCurrentFuel, sample.CurrentFuel)
	writeFloat32(plain, offFuelCapacity, sample.FuelCapacity)
	writeFloat32(plain, offPositionX, sample.PositionX)
	writeFloat32(plain, offPositionY, sample.PositionY)
	writeFloat32(plain, offPositionZ, sample.PositionZ)
	writeFloat32(plain, offRotationPitch, sample.RotationPitch)
	writeFloat32(plain, offRotationYaw, sample.RotationYaw)
	writeFloat32(plain, offRotationRoll, sample.RotationRoll)
	writeFloat32(plain, offRideHeight, sample.RideHeight/1000)
	writeFloat32(plain, offTyreTempFL, sample.TyreTemp.FrontLeft)
	writeFloat32(plain, offTyreTempFR, sample.TyreTemp.FrontRight)
	writeFloat32(plain, offTyreTempRL, sample.TyreTemp.RearLeft)
	writeFloat32(plain, offTyreTempRR, sample.TyreTemp.RearRight)
	writeWheelSpeed(plain, offWheelRPSFL, offTyreRadiusFL, sample.WheelSpeed.FrontLeft)
	writeWheelSpeed(plain, offWheelRPSFR, offTyreRadiusFR, sample.WheelSpeed.FrontRight)
	writeWheelSpeed(plain, offWheelRPSRL, offTyreRadiusRL, sample.WheelSpeed.RearLeft)
	writeWheelSpeed(plain, offWheelRPSRR, offTyreRadiusRR, sample.WheelSpeed.RearRight)

	return Encrypt(plain)
}
