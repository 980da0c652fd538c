package control

// BangBang commands full deployment when the predicted apogee exceeds the
// target by more than the hysteresis band, zero otherwise. It keeps no
// integral or derivative state.
type BangBang struct {
	target  float64
	band    float64
	predict Predictor
}

func NewBangBang(cfg Config, predict Predictor) *BangBang {
	return &BangBang{
		target:  cfg.effectiveTarget(),
		band:    cfg.Hysteresis,
		predict: predict,
	}
}

func (b *BangBang) Decide(st *State, dt float64) (float64, error) {
	if b.predict(st.FilteredAltitude, st.FilteredVelocity)-b.target > b.band {
		return 1.0, nil
	}
	return 0.0, nil
}
