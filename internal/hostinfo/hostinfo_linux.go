//go:build linux

package hostinfo

import "golang.org/x/sys/unix"

func fillUname(info *Info) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return
	}
	info.Kernel = unix.ByteSliceToString(uts.Release[:])
	info.Machine = unix.ByteSliceToString(uts.Machine[:])
}
