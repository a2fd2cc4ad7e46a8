package plugin

// The wrapper runs the asset body with `this` bound to the global object of
// whichever host it lands in. WrapperLines must equal the number of lines
// wrapPreamble adds ahead of the body; input maps are shifted by it.
const (
	wrapPreamble  = "(function(){\n"
	wrapPostamble = "\n}).call(typeof global !== \"undefined\" ? global : window);"

	WrapperLines = 1
)

// Wrap encloses text in the global-binding wrapper.
func Wrap(text string) string {
	return wrapPreamble + text + wrapPostamble
}
