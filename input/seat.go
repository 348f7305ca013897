package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// DefaultSeat is the seat of any device udev did not tag otherwise.
const DefaultSeat = "seat0"

const seatKey = "E:ID_SEAT="

// SeatOf returns the seat udev assigned to the character device at path,
// read from the udev database under udevDir.
func SeatOf(udevDir, path string) (string, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFCHR {
		return "", fmt.Errorf("%s is not a character device", path)
	}

	rdev := uint64(st.Rdev)
	db := filepath.Join(udevDir, fmt.Sprintf("c%d:%d", unix.Major(rdev), unix.Minor(rdev)))
	f, err := os.Open(db)
	if os.IsNotExist(err) {
		return DefaultSeat, nil
	}
	if err != nil {
		return "", err
	}
	defer f.Close()
	return readSeat(f)
}

func readSeat(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if seat, ok := strings.CutPrefix(sc.Text(), seatKey); ok && seat != "" {
			return seat, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return DefaultSeat, nil
}
