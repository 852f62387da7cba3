package wellformed

// WFA is the four-attribute abstract value carried per expression
// during well-formedness analysis.
type WFA struct {
	CanFail       bool
	CanSucceed    bool
	AlwaysConsume bool
	NeverConsume  bool
}

// defaultWFA is the conservative "top" value used to seed every rule
// before the fixed-point loop converges.
func defaultWFA() WFA {
	return WFA{CanFail: true, CanSucceed: true, AlwaysConsume: true, NeverConsume: false}
}

// alwaysSucceed is the WFA shape shared by ZeroOrMore and Optional:
// they can never fail, never always consume, and NeverConsume is
// inherited from the child's NeverConsume.
func alwaysSucceed(neverConsume bool) WFA {
	return WFA{CanFail: false, CanSucceed: true, AlwaysConsume: false, NeverConsume: neverConsume}
}

func (w WFA) equal(o WFA) bool {
	return w.CanFail == o.CanFail &&
		w.CanSucceed == o.CanSucceed &&
		w.AlwaysConsume == o.AlwaysConsume &&
		w.NeverConsume == o.NeverConsume
}
