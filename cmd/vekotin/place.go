package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oukeidos/vekotin/internal/apperrors"
	"github.com/oukeidos/vekotin/internal/geometry"
)

var systemDisplay = geometry.SystemDisplay

type placeOptions struct {
	window   string
	area     string
	distance int
	margin   int
}

func newPlaceCmd() *cobra.Command {
	opts := &placeOptions{}
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Run the snap and keep-on-screen rules on a window rectangle",
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.window, "window", "", "Window as x,y,width,height")
	pf.StringVar(&opts.area, "area", "", "Work area as left,top,right,bottom (default: the monitor under the window)")
	pf.IntVar(&opts.distance, "distance", geometry.SnapDistance, "Snap distance in pixels")
	pf.IntVar(&opts.margin, "margin", geometry.SnapMargin, "Gap left after snapping")

	cmd.AddCommand(
		newPlaceSubCmd(opts, "snap", "Snap the window to the nearest work area edge", geometry.Placement{Snap: true}),
		newPlaceSubCmd(opts, "constrain", "Move the window inside the work area", geometry.Placement{Constrain: true}),
		newPlaceSubCmd(opts, "both", "Snap, then constrain", geometry.Placement{Snap: true, Constrain: true}),
	)
	return cmd
}

func newPlaceSubCmd(opts *placeOptions, use, short string, p geometry.Placement) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			win, area, err := opts.resolve()
			if err != nil {
				return err
			}
			e := geometry.Engine{SnapDistance: opts.distance, SnapMargin: opts.margin}
			got := e.Place(win, area, p)
			fmt.Fprintf(cmd.OutOrStdout(), "%d,%d,%d,%d\n", got.Left, got.Top, got.Width(), got.Height())
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func (o *placeOptions) resolve() (geometry.Rect, geometry.Rect, error) {
	if o.window == "" {
		return geometry.Rect{}, geometry.Rect{}, apperrors.InvalidArgument("--window is required")
	}
	w, err := parseInts(o.window, "--window")
	if err != nil {
		return geometry.Rect{}, geometry.Rect{}, err
	}
	if w[2] <= 0 || w[3] <= 0 {
		return geometry.Rect{}, geometry.Rect{}, apperrors.InvalidArgument("--window size must be positive")
	}
	win := geometry.RectFromBounds(w[0], w[1], w[2], w[3])

	if o.area == "" {
		return win, geometry.GetWorkArea(systemDisplay(), 0, win), nil
	}
	a, err := parseInts(o.area, "--area")
	if err != nil {
		return geometry.Rect{}, geometry.Rect{}, err
	}
	area := geometry.Rect{Left: a[0], Top: a[1], Right: a[2], Bottom: a[3]}
	if area.Empty() {
		return geometry.Rect{}, geometry.Rect{}, apperrors.InvalidArgument("--area must have positive size")
	}
	return win, area, nil
}

func parseInts(s, name string) ([4]int, error) {
	var out [4]int
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return out, apperrors.InvalidArgument(fmt.Sprintf("%s needs four comma-separated integers", name))
	}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return out, apperrors.InvalidArgument(fmt.Sprintf("%s: %q is not an integer", name, p))
		}
		out[i] = v
	}
	return out, nil
}
