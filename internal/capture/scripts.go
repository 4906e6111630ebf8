package capture

import (
	"encoding/json"
	"fmt"
)

// overlayKeywords mark elements as overlays when they occur in the element's
// class name or id.
var overlayKeywords = []string{"cookie", "consent", "banner", "popup", "osano"}

// overlayMinZIndex is the stacking order above which fixed or absolute
// elements are treated as overlays.
const overlayMinZIndex = 1000

const scrollHeightJS = `Math.max(document.body ? document.body.scrollHeight : 0, document.documentElement.scrollHeight)`

const scrollTopJS = `window.scrollTo(0, 0)`

func scrollByJS(step int) string {
	return fmt.Sprintf(`window.scrollBy(0, %d)`, step)
}

// removeOverlaysJS returns a script that deletes cookie banners, consent
// dialogs and other floating elements and evaluates to the number of
// removed elements.
func removeOverlaysJS() string {
	kw, _ := json.Marshal(overlayKeywords)
	return fmt.Sprintf(`(() => {
	const keywords = %s;
	let removed = 0;
	document.querySelectorAll('body *').forEach((el) => {
		if (!el.isConnected) {
			return;
		}
		const style = window.getComputedStyle(el);
		const z = parseInt(style.zIndex, 10);
		const floating = (style.position === 'fixed' || style.position === 'absolute') &&
			style.display !== 'none' && !isNaN(z) && z > %d;
		const cls = typeof el.className === 'string' ? el.className : (el.getAttribute('class') || '');
		const marker = (cls + ' ' + (el.id || '')).toLowerCase();
		if (floating || keywords.some((k) => marker.includes(k))) {
			el.remove();
			removed++;
		}
	});
	return removed;
})()`, kw, overlayMinZIndex)
}
