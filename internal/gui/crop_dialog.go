package gui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/jodinathan/filedrive/internal/crop"
	"github.com/jodinathan/filedrive/internal/models"
)

// ShowCropDialog opens the crop-selection dialog for an image item. The user
// enters the source dimensions and the desired output; a missing output
// dimension is inferred from the aspect ratio. onApply receives the centered,
// validated crop rectangle.
//
// Pixel cropping itself is left to the consumer; the dialog only produces the
// rectangle.
func ShowCropDialog(window fyne.Window, item models.FileItem, onApply func(crop.Rect)) {
	srcWEntry := widget.NewEntry()
	srcWEntry.SetPlaceHolder("e.g. 1920")
	srcHEntry := widget.NewEntry()
	srcHEntry.SetPlaceHolder("e.g. 1080")

	outWEntry := widget.NewEntry()
	outWEntry.SetPlaceHolder("blank to infer")
	outHEntry := widget.NewEntry()
	outHEntry.SetPlaceHolder("blank to infer")
	aspectEntry := widget.NewEntry()
	aspectEntry.SetPlaceHolder("e.g. 1.777")

	resultLabel := widget.NewLabel("")
	resultLabel.Wrapping = fyne.TextWrapWord

	items := []*widget.FormItem{
		widget.NewFormItem("Image width", srcWEntry),
		widget.NewFormItem("Image height", srcHEntry),
		widget.NewFormItem("Crop width", outWEntry),
		widget.NewFormItem("Crop height", outHEntry),
		widget.NewFormItem("Aspect ratio", aspectEntry),
		widget.NewFormItem("", resultLabel),
	}

	d := dialog.NewForm("Crop "+item.Name, "Apply", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}

		srcW := parseInt(srcWEntry.Text)
		srcH := parseInt(srcHEntry.Text)
		spec := crop.Spec{
			Width:  parseInt(outWEntry.Text),
			Height: parseInt(outHEntry.Text),
			Aspect: parseFloat(aspectEntry.Text),
		}

		w, h, err := crop.InferDimensions(spec, srcW, srcH)
		if err != nil {
			dialog.ShowError(fmt.Errorf("cannot determine crop size: %w", err), window)
			return
		}

		rect := crop.Centered(w, h, srcW, srcH)
		if err := crop.Validate(rect, srcW, srcH, spec); err != nil {
			dialog.ShowError(err, window)
			return
		}

		if onApply != nil {
			onApply(rect)
		}
	}, window)

	d.Resize(fyne.NewSize(420, 0))
	d.Show()
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
