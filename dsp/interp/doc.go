// Package interp provides the fractional interpolators used by delay lines.
//
//   - [Linear2]:  2-point linear interpolation, used on the modulated tap
//   - [Hermite4]: 4-point cubic Hermite, for smoother fixed-delay reads
package interp
