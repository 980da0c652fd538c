package control

// PID steers predicted-apogee error to zero. Positive error (overshooting
// the target) drives the brakes out.
type PID struct {
	kp, ki, kd    float64
	target        float64
	integralLimit float64
	predict       Predictor
}

func NewPID(cfg Config, predict Predictor) *PID {
	return &PID{
		kp:            cfg.Kp,
		ki:            cfg.Ki,
		kd:            cfg.Kd,
		target:        cfg.effectiveTarget(),
		integralLimit: cfg.IntegralLimit,
		predict:       predict,
	}
}

func (p *PID) Decide(st *State, dt float64) (float64, error) {
	err := p.predict(st.FilteredAltitude, st.FilteredVelocity) - p.target

	st.IntegralError += err * dt
	if p.integralLimit > 0 {
		st.IntegralError = clamp(st.IntegralError, -p.integralLimit, p.integralLimit)
	}

	derivative := (err - st.PreviousError) / dt
	st.PreviousError = err

	u := p.kp*err + p.ki*st.IntegralError + p.kd*derivative
	return clamp(u, 0, 1), nil
}
