// Package analysis inspects recorded runs.
//
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of a sampled
//     series such as the mean radius, via go-dsp's FFT
//   - [Describe]: summary statistics of a series
//   - [FramePortrait]: radius against speed for every particle of a frame,
//     rendered with [PhasePortraitToASCII]
//
// A disk of circular orbits traces the Keplerian curve v = sqrt(GM/r) in its
// portrait; scatter away from it shows eccentric or infalling particles.
package analysis
