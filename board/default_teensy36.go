//go:build teensy36

package board

var defaultProfile = Teensy36
