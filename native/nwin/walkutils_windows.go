package nwin

import (
	"unsafe"

	"github.com/lxn/walk"
	"github.com/lxn/win"
)

func RectangleFromRECT(r win.RECT) walk.Rectangle {
	return walk.Rectangle{
		X:      int(r.Left),
		Y:      int(r.Top),
		Width:  int(r.Right - r.Left),
		Height: int(r.Bottom - r.Top),
	}
}

// CenterWindow centers a form on the monitor it's on (or the primary
// one), leaving room for the caption.
func CenterWindow(mw *walk.FormBase) {
	var mi win.MONITORINFO
	mi.CbSize = uint32(unsafe.Sizeof(mi))

	if win.GetMonitorInfo(win.MonitorFromWindow(mw.Handle(), win.MONITOR_DEFAULTTOPRIMARY), &mi) {
		mon := RectangleFromRECT(mi.RcWork)
		mon.Height -= int(win.GetSystemMetrics(win.SM_CYCAPTION))

		size := mw.Size()

		mw.SetBounds(walk.Rectangle{
			X:      mon.X + (mon.Width-size.Width)/2,
			Y:      mon.Y + (mon.Height-size.Height)/2,
			Width:  size.Width,
			Height: size.Height,
		})
	}
}

// RemoveMaximizeBox strips the maximize button, the window has a
// fixed size.
func RemoveMaximizeBox(mw *walk.MainWindow) {
	style := win.GetWindowLong(mw.Handle(), win.GWL_STYLE)
	style &^= win.WS_MAXIMIZEBOX
	win.SetWindowLong(mw.Handle(), win.GWL_STYLE, style)
}
