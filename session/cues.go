package session

import "nativo/beep"

// BeepCues plays the packaged tones through the default output device.
type BeepCues struct{}

func (BeepCues) Start() { beep.PlayStart() }
func (BeepCues) Stop()  { beep.PlayEnd() }
func (BeepCues) Error() { beep.PlayError() }
