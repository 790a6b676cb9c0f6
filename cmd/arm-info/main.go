// Command arm-info connects to the arm, reads the current joint angles
// and prints them together with the Cartesian tool pose. Useful for
// checking the serial link and for capturing a pose to configure as home.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/teslashibe/go-cobot/pkg/driver"
	"github.com/teslashibe/go-cobot/pkg/kinematics"
)

func main() {
	port := flag.String("port", "/dev/ttyUSB0", "Serial port")
	baud := flag.Int("baud", 115200, "Baud rate")
	watch := flag.Bool("watch", false, "Keep printing angles once per second")
	flag.Parse()

	d, err := driver.OpenMyCobot(*port, *baud)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", *port, err)
		os.Exit(1)
	}
	defer d.Close()

	model := kinematics.MyCobot280()

	for {
		angles, err := d.GetAngles()
		if err != nil {
			fmt.Fprintf(os.Stderr, "read angles: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Joint angles (deg):")
		for i, a := range angles {
			fmt.Printf("  J%d: %8.2f\n", i+1, a)
		}

		tool := model.Forward(angles)
		fmt.Printf("Tool pose: x=%.1fmm y=%.1fmm z=%.1fmm roll=%.2frad pitch=%.2frad yaw=%.2frad\n",
			tool.X*1000, tool.Y*1000, tool.Z*1000, tool.Roll, tool.Pitch, tool.Yaw)

		if !*watch {
			return
		}
		time.Sleep(time.Second)
	}
}
