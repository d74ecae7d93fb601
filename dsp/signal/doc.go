// Package signal provides streaming test sources for driving the device
// without an audio input.
package signal
