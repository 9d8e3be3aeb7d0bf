// miditest is a hardware scratchpad for the X-Touch Mini: list ports, walk
// the LED rings through every state, and watch decoded input events.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"camdeck/lightring"
	"camdeck/xtouch"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	port := "x-touch mini"
	if len(os.Args) > 2 {
		port = os.Args[2]
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "detect":
		detect(port)
	case "rings":
		testRings(port)
	case "monitor":
		monitor(port)
	case "hui":
		if len(os.Args) <= 2 {
			port = "x-touch"
		}
		monitorHUI(port)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("X-Touch Mini test scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list [name]     - List all MIDI ports")
	fmt.Println("  detect [name]   - Find the surface")
	fmt.Println("  rings [name]    - Walk the LED rings through every state")
	fmt.Println("  monitor [name]  - Print decoded encoder and button events")
	fmt.Println("  hui [name]      - Decode a full-size X-Touch in XctlHUI mode")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: midi.GetInPorts(), outs: midi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! The MIDI backend is hung.")
	}
}

func detect(port string) {
	fmt.Printf("Looking for %q...\n", port)

	found := false
	for i, p := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(p.String()), port) {
			fmt.Printf("Found input: %d: %s\n", i, p.String())
			found = true
		}
	}
	for i, p := range midi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), port) {
			fmt.Printf("Found output: %d: %s\n", i, p.String())
			found = true
		}
	}
	if !found {
		fmt.Println("Not found")
	}
}

func testRings(port string) {
	s, err := xtouch.Open(port)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer s.Close()

	fmt.Println("Sweeping ring positions...")
	for _, pos := range lightring.Steps[1:26] {
		for e := 0; e < 8; e++ {
			s.SetRing(e, pos)
		}
		time.Sleep(120 * time.Millisecond)
	}

	fmt.Println("Special modes...")
	for _, mode := range []lightring.Special{
		lightring.BlinkLeft, lightring.BlinkCenter, lightring.BlinkRight,
		lightring.AllOn, lightring.BlinkAll, lightring.Off,
	} {
		fmt.Printf("  %s\n", mode)
		for e := 0; e < 8; e++ {
			s.Special(e, mode)
		}
		time.Sleep(700 * time.Millisecond)
	}

	fmt.Println("Button LEDs...")
	for b := 0; b < 16; b++ {
		s.SetButtonLED(b, true)
		time.Sleep(80 * time.Millisecond)
	}
	for b := 0; b < 16; b++ {
		s.SetButtonLED(b, false)
	}

	fmt.Println("Done!")
}

func monitorHUI(port string) {
	var in drivers.In
	for _, p := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(p.String()), port) {
			in = p
			break
		}
	}
	var out drivers.Out
	for _, p := range midi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), port) {
			out = p
			break
		}
	}
	if in == nil || out == nil {
		fmt.Printf("Port %q not found\n", port)
		return
	}

	send, err := midi.SendTo(out)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	var hui xtouch.HUI
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var channel, control, value uint8
		if !msg.GetControlChange(&channel, &control, &value) {
			return
		}
		ev, err := hui.Decode(channel, control, value)
		if err != nil {
			fmt.Printf("fault: %v\n", err)
			return
		}
		if ev == nil {
			return
		}
		if ev.Wheel != 0 {
			fmt.Printf("wheel %+d\n", ev.Wheel)
			return
		}
		state := "release"
		if ev.Pressed {
			state = "press"
		}
		fmt.Printf("key %s %s\n", ev.Key, state)
		// Echo the edge on the button's LED.
		if zone, p, err := xtouch.LEDMessages(ev.Key, ev.Pressed); err == nil {
			send(midi.ControlChange(0, 0x0c, zone))
			send(midi.ControlChange(0, 0x2c, p))
		}
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer stop()

	fmt.Println("Press transport buttons and turn the jog wheel. Ctrl+C to exit.")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}

func monitor(port string) {
	s, err := xtouch.Open(port)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer s.Close()

	fmt.Println("Turn encoders and press buttons. Ctrl+C to exit.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case ev := <-s.Events():
			switch ev.Kind {
			case xtouch.Turn:
				fmt.Printf("encoder %d turn %+d  (drive %s)\n", ev.Encoder, ev.Delta, xtouch.DriveCommand(ev.Delta))
			case xtouch.Push:
				fmt.Printf("encoder %d push\n", ev.Encoder)
			case xtouch.Key:
				state := "release"
				if ev.Pressed {
					state = "press"
				}
				fmt.Printf("button %d %s\n", ev.Button, state)
			}
		case <-sig:
			return
		}
	}
}
