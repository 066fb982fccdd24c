// The utils package contains general-purpose functions for the OSNMA software.
package utils

import (
	"log"

	"github.com/goblimey/go-tools/dailylogger"
)

// GetBitsAsUint64 extracts length bits from a slice of bytes, starting
// at bit position pos and returns them as a uint64.  Bit 0 is the top
// bit of the first byte, so bit i lives in byte i/8 at position
// 7 - (i mod 8) within the byte.  See RTKLIB's getbitu.
func GetBitsAsUint64(buff []byte, pos uint, length uint) uint64 {
	const u64One uint64 = 1
	var result uint64 = 0
	for i := pos; i < pos+length; i++ {
		byteNumber := i / 8
		// Work on a 64-bit copy of the byte contents.
		var byteContents uint64 = uint64(buff[byteNumber])
		var shiftBy uint = 7 - i%8
		// Shift the contents down to put the desired bit at the bottom.
		b := byteContents >> shiftBy
		// Extract the bottom bit.
		bit := b & u64One
		// Shift the result up one bit and glue in the extracted bit.
		result = (result << 1) | uint64(bit)
	}
	return result
}

// GetBitsAsInt64 extracts length bits from a slice of bytes, starting at bit
// position pos, interprets the bits as a twos-complement integer and returns
// the result as a 64-bit signed int.  See RTKLIB's getbits.
func GetBitsAsInt64(buff []byte, pos uint, length uint) int64 {
	// If the first bit is a 1, the result is negative.
	negative := GetBitsAsUint64(buff, pos, 1) == 1
	// Get the whole bit string.
	uval := GetBitsAsUint64(buff, pos, length)
	if negative {
		// It's negative.  Subtract the weight of the top bit.
		var mask uint64 = 2 << (length - 2)
		weightOfTopBit := int64(uval & mask)
		weightOfLowerBits := int64(uval & ^mask)
		return (-1 * weightOfTopBit) + weightOfLowerBits
	}

	return int64(uval)
}

// GetDailyLogger gets a daily log file which can be written to as a logger
// (each line decorated with filename, date, time, etc).
func GetDailyLogger() *log.Logger {
	dailyLog := dailylogger.New("logs", "osnma.", ".log")
	logFlags := log.LstdFlags | log.Lshortfile | log.Lmicroseconds
	return log.New(dailyLog, "osnma", logFlags)
}

// GetDailyLogWriter gets the daily log file as a raw writer, for use as
// the destination of a structured (slog) logger.
func GetDailyLogWriter() *dailylogger.Writer {
	return dailylogger.New("logs", "osnma.", ".log")
}
