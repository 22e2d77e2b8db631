// Package moog provides a nonlinear four-pole Moog ladder low-pass filter
// used as the per-voice filter of the synthesizer.
//
// Supported variants:
//   - VariantClassic: four tanh-saturated one-pole stages with direct
//     feedback from the last stage.
//   - VariantClassicLightweight: the same topology with a rational tanh
//     approximation for lower CPU use.
//   - VariantHuovilainen: Huovilainen-style cutoff tuning and resonance
//     compensation with a half-sample feedback estimate. This is the default.
//
// Resonance is the ladder feedback gain in [0, 4]; values near 4 self-oscillate.
// Constructors and Set* methods validate their input and return errors.
// [Filter.Tune] is the modulation path: it clamps instead of failing and
// skips the coefficient rebuild when nothing changed.
package moog
