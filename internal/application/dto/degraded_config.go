package dto

// DegradedConfig holds the feature toggles applied when the session falls
// back to degraded mode. It is owned by the fault handler; callers only
// ever see copies.
type DegradedConfig struct {
	UseBasicInput       bool
	DisableColors       bool
	DisableProgress     bool
	DisableAutoComplete bool
	DisableHistory      bool
}

// DegradedConfigPatch is a partial update to DegradedConfig.
// Nil fields keep their current values.
type DegradedConfigPatch struct {
	UseBasicInput       *bool
	DisableColors       *bool
	DisableProgress     *bool
	DisableAutoComplete *bool
	DisableHistory      *bool
}

// FullDegradation returns a patch that turns every toggle on.
// Used when an unrecoverable critical fault forces the mode switch.
func FullDegradation() DegradedConfigPatch {
	on := true
	return DegradedConfigPatch{
		UseBasicInput:       &on,
		DisableColors:       &on,
		DisableProgress:     &on,
		DisableAutoComplete: &on,
		DisableHistory:      &on,
	}
}

// Merge applies the patch and returns the updated config
func (c DegradedConfig) Merge(p DegradedConfigPatch) DegradedConfig {
	if p.UseBasicInput != nil {
		c.UseBasicInput = *p.UseBasicInput
	}
	if p.DisableColors != nil {
		c.DisableColors = *p.DisableColors
	}
	if p.DisableProgress != nil {
		c.DisableProgress = *p.DisableProgress
	}
	if p.DisableAutoComplete != nil {
		c.DisableAutoComplete = *p.DisableAutoComplete
	}
	if p.DisableHistory != nil {
		c.DisableHistory = *p.DisableHistory
	}
	return c
}
