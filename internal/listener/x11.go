package listener

import (
	"context"
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Conn is the X server connection used for RandR event delivery.
type Conn struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

// Connect establishes the X connection and initializes the RandR extension.
func Connect() (*Conn, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connecting to X server: %w", err)
	}
	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr init failed: %w", err)
	}
	return &Conn{xu: xu, root: xu.RootWin()}, nil
}

// Close disconnects from the X server. This is also how a blocked Run is
// released, the X event wait has no context awareness of its own.
func (c *Conn) Close() {
	c.xu.Conn().Close()
}

// Run subscribes to RandR change notifications and dispatches them to the
// listener until the context ends or the connection closes. The interactive
// worker is started here and shares the context.
func (c *Conn) Run(ctx context.Context, l *Listener) error {
	err := randr.SelectInputChecked(c.xu.Conn(), c.root,
		randr.NotifyMaskScreenChange|randr.NotifyMaskOutputChange).Check()
	if err != nil {
		return fmt.Errorf("subscribing to randr events: %w", err)
	}

	l.Prime(ctx)
	go l.Worker(ctx)

	for {
		ev, xerr := c.xu.Conn().WaitForEvent()
		if ev == nil && xerr == nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.New("x connection closed")
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if xerr != nil {
			l.log.Warn("x protocol error", "error", xerr.Error())
			continue
		}
		switch ev.(type) {
		case randr.NotifyEvent, randr.ScreenChangeNotifyEvent:
			l.HandleChange(ctx)
		}
	}
}
