package utils

import (
	"errors"
	"log"
	"unsafe"

	"github.com/jwaldrip/odin/cli"
)

type ArgsOpt struct {
	Prefix     string
	NumCPU     int
	Cpuprofile string
}

// return global arguments and check if successed
func CheckGlobalArgs(c cli.Command) (opt ArgsOpt, succ bool) {
	opt.Prefix = c.Flag("p").String()
	if opt.Prefix == "" {
		log.Fatalf("[CheckGlobalArgs] args 'p' not set\n")
	}
	opt.Cpuprofile = c.Flag("cpuprofile").String()
	var ok bool
	opt.NumCPU, ok = c.Flag("t").Get().(int)
	if !ok {
		log.Fatalf("[CheckGlobalArgs] args 't': %v set error\n", c.Flag("t").String())
	}
	return opt, true
}

func AbsInt(a int) int {
	if a < 0 {
		return -a
	} else {
		return a
	}
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	} else {
		return b
	}
}

func MinInt(a, b int) int {
	if a > b {
		return b
	} else {
		return a
	}
}

func ByteArrInt(id []byte) (d int, err error) {
	for _, c := range id {
		if c < '0' || c > '9' {
			err = errors.New("can't convert to digit...")
			return d, err
		}
		d = d*10 + int(c-'0')
	}
	return d, nil
}

func Bytes2String(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

func BytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return Bytes2String(a) == Bytes2String(b)
}
