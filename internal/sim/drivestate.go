package sim

// DriveState is the coarse vehicle motion phase. Accel and Decel are
// transient ramps; Stop and Drive are the stable endpoints.
type DriveState int

const (
	DriveStop DriveState = iota
	DriveDrive
	DriveAccel
	DriveDecel
)

func (s DriveState) String() string {
	switch s {
	case DriveStop:
		return "stop"
	case DriveDrive:
		return "drive"
	case DriveAccel:
		return "accel"
	case DriveDecel:
		return "decel"
	}
	return "unknown"
}

// DriveModel ramps a 0..1 time scale between stop and drive. The time
// scale feeds wheel-spin animation and the exhaust emission tier.
type DriveModel struct {
	State     DriveState
	TimeScale float64
	RampRate  float64 // time-scale units per second

	WheelAngle float64 // radians, wheel-spin animation hook
	WheelSpeed float64 // radians per second at full time scale
}

func NewDriveModel() *DriveModel {
	return &DriveModel{
		State:      DriveStop,
		RampRate:   DriveRampRate,
		WheelSpeed: 18.0,
	}
}

// IgnitionOn begins the spin-up ramp. No-op while already running.
func (d *DriveModel) IgnitionOn() {
	if d.State == DriveStop || d.State == DriveDecel {
		d.State = DriveAccel
	}
}

// IgnitionOff begins the spin-down ramp. No-op while already stopped.
func (d *DriveModel) IgnitionOff() {
	if d.State == DriveDrive || d.State == DriveAccel {
		d.State = DriveDecel
	}
}

// Update advances the ramp. Accel and Decel always either keep ramping
// or complete their transition; there is no idling in a ramp state.
func (d *DriveModel) Update(dt float64) {
	switch d.State {
	case DriveAccel:
		d.TimeScale += d.RampRate * dt
		if d.TimeScale >= 1.0 {
			d.TimeScale = 1.0
			d.State = DriveDrive
		}
	case DriveDecel:
		d.TimeScale -= d.RampRate * dt
		if d.TimeScale <= 0.0 {
			d.TimeScale = 0.0
			d.State = DriveStop
		}
	}
	d.WheelAngle += d.WheelSpeed * d.TimeScale * dt
}

// BrakeLight returns the brake-light intensity: full while spinning
// down, off otherwise.
func (d *DriveModel) BrakeLight() float64 {
	if d.State == DriveDecel {
		return 1.0
	}
	return 0.0
}
