//go:build !nomidi

package main

import _ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register the MIDI driver
