//go:build windows

package platform

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"github.com/verte-zerg/typewright/internal/engine"
)

const (
	inputKeyboard    = 1
	keyeventfKeyUp   = 0x0002
	keyeventfUnicode = 0x0004
)

type keybdInput struct {
	wVk, wScan  uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keybdInput
	padding   [8]byte
}

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

// Platform reads the foreground window and injects input through user32.
type Platform struct{}

// New returns the Windows platform.
func New() (*Platform, error) {
	if err := procSendInput.Find(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return &Platform{}, nil
}

// Foreground identifies the application owning the foreground window by its process id.
func (p *Platform) Foreground() (engine.AppID, error) {
	hwnd := win.GetForegroundWindow()
	if hwnd == 0 {
		return "", errors.New("no foreground window")
	}
	var pid uint32
	win.GetWindowThreadProcessId(hwnd, &pid)
	if pid == 0 {
		return "", errors.New("failed to resolve foreground process")
	}
	return engine.AppID(fmt.Sprintf("pid:%d", pid)), nil
}

// EmitCharacter types r as a unicode key press, using a surrogate pair when needed.
func (p *Platform) EmitCharacter(r rune) error {
	units := utf16.Encode([]rune{r})
	inputs := make([]input, 0, 2*len(units))
	for _, u := range units {
		inputs = append(inputs,
			input{inputType: inputKeyboard, ki: keybdInput{wScan: u, dwFlags: keyeventfUnicode}},
			input{inputType: inputKeyboard, ki: keybdInput{wScan: u, dwFlags: keyeventfUnicode | keyeventfKeyUp}},
		)
	}
	return sendInput(inputs)
}

// EmitControlKey presses and releases a virtual key.
func (p *Platform) EmitControlKey(k engine.ControlKey) error {
	var vk uint16
	switch k {
	case engine.KeyReturn:
		vk = win.VK_RETURN
	case engine.KeyBackspace:
		vk = win.VK_BACK
	default:
		return fmt.Errorf("unknown control key %d", k)
	}
	return sendInput([]input{
		{inputType: inputKeyboard, ki: keybdInput{wVk: vk}},
		{inputType: inputKeyboard, ki: keybdInput{wVk: vk, dwFlags: keyeventfKeyUp}},
	})
}

func sendInput(inputs []input) error {
	ret, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(ret) != len(inputs) {
		return fmt.Errorf("SendInput failed: %v", err)
	}
	return nil
}
