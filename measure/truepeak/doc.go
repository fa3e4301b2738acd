// Package truepeak estimates true-peak level per ITU-R BS.1770-4 Annex 2.
//
// Each channel is upsampled 4x with the 48-tap polyphase FIR of the
// standard and the largest absolute interpolated value is reported in dBTP.
// The reported true peak is never below the sample peak.
package truepeak
