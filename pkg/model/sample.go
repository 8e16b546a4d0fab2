package model

// CornerSet holds one value per wheel of the vehicle.
type CornerSet struct {
	FrontLeft  float64 `json:"frontLeft"`
	FrontRight float64 `json:"frontRight"`
	RearLeft   float64 `json:"rearLeft"`
	RearRight  float64 `json:"rearRight"`
}

// Max returns the largest of the four corner values.
func (c CornerSet) Max() float64 {
	ret := c.FrontLeft
	for _, v := range []float64{c.FrontRight, c.RearLeft, c.RearRight} {
		if v > ret {
			ret = v
		}
	}
	return ret
}

// TelemetrySample is one decoded telemetry tick. Instances are immutable
// once decoded; the receiver creates and discards one per datagram.
type TelemetrySample struct {
	PackageID         int32     // strictly increasing sequence number
	BestLap           int32     // best lap time in ms (-1 if not set)
	LastLap           int32     // last finished lap time in ms (-1 if not set)
	CurrentLap        int       // in-game lap index, 0 before crossing the line
	TotalLaps         int       // laps of the race, 0 for time trials
	InRace            bool      // car is on track
	IsPaused          bool      // game is paused
	CarSpeed          float64   // km/h
	Throttle          float64   // 0..100
	Brake             float64   // 0..100
	RPM               float64
	CurrentGear       int
	SuggestedGear     int
	Boost             float64   // bar, relative to ambient
	CurrentFuel       float64   // liters
	FuelCapacity      float64   // liters
	WheelSpeed        CornerSet // km/h per wheel
	TyreTemp          CornerSet // degrees celsius
	PositionX         float64
	PositionY         float64
	PositionZ         float64
	RotationPitch     float64
	RotationYaw       float64
	RotationRoll      float64
	RideHeight        float64 // mm
	CarID             int
	EstimatedTopSpeed int     // km/h
}
