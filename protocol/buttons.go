package protocol

// Button bits of the Buttons bitmask. The layout matches the console's npad
// button order: face buttons, stick clicks, bumpers, triggers, plus/minus,
// d-pad, then the synthetic stick-direction and SL/SR bits.
const (
	ButtonA uint64 = 1 << iota
	ButtonB
	ButtonX
	ButtonY
	ButtonStickL
	ButtonStickR
	ButtonL
	ButtonR
	ButtonZL
	ButtonZR
	ButtonPlus
	ButtonMinus
	ButtonDpadLeft
	ButtonDpadUp
	ButtonDpadRight
	ButtonDpadDown
	ButtonStickLLeft
	ButtonStickLUp
	ButtonStickLRight
	ButtonStickLDown
	ButtonStickRLeft
	ButtonStickRUp
	ButtonStickRRight
	ButtonStickRDown
	ButtonLeftSL
	ButtonLeftSR
	ButtonRightSL
	ButtonRightSR
)
