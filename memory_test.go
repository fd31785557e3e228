package vkx

import (
	"errors"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func memType(props vk.MemoryPropertyFlagBits) vk.MemoryType {
	return vk.MemoryType{PropertyFlags: vk.MemoryPropertyFlags(props)}
}

func TestChooseMemoryType(t *testing.T) {
	table := []vk.MemoryType{
		memType(vk.MemoryPropertyDeviceLocalBit),
		memType(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
		memType(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit | vk.MemoryPropertyHostCachedBit),
		memType(vk.MemoryPropertyDeviceLocalBit),
	}

	cases := []struct {
		name     string
		typeBits uint32
		props    vk.MemoryPropertyFlagBits
		want     uint32
	}{
		{"lowest index wins", 0b1111, vk.MemoryPropertyDeviceLocalBit, 0},
		{"type bits exclude earlier match", 0b1000, vk.MemoryPropertyDeviceLocalBit, 3},
		{"superset of requested flags matches", 0b1111, vk.MemoryPropertyHostVisibleBit, 1},
		{"combined request", 0b1111, vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCachedBit, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := chooseMemoryType(table, tc.typeBits, vk.MemoryPropertyFlags(tc.props))
			if err != nil {
				t.Fatalf("chooseMemoryType: %v", err)
			}
			if got != tc.want {
				t.Errorf("chose type %d, want %d", got, tc.want)
			}
		})
	}
}

func TestChooseMemoryTypeUnsatisfiable(t *testing.T) {
	table := []vk.MemoryType{
		memType(vk.MemoryPropertyDeviceLocalBit),
	}

	// Property flags not offered by any type.
	_, err := chooseMemoryType(table, 0b1, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit))
	if !errors.Is(err, ErrNoSuitableMemory) {
		t.Errorf("got %v, want ErrNoSuitableMemory", err)
	}

	// Matching type masked out by the resource's type bits.
	_, err = chooseMemoryType(table, 0b10, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if !errors.Is(err, ErrNoSuitableMemory) {
		t.Errorf("got %v, want ErrNoSuitableMemory", err)
	}
}
