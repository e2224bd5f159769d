package fitting

import (
	"fmt"
	"strings"
)

// GarmentType steers the prompt toward correct sleeve and fit handling.
type GarmentType string

const (
	GarmentAuto        GarmentType = "auto"
	GarmentShortSleeve GarmentType = "short-sleeve"
	GarmentLongSleeve  GarmentType = "long-sleeve"
	GarmentSleeveless  GarmentType = "sleeveless"
	GarmentDress       GarmentType = "dress"
	GarmentJacket      GarmentType = "jacket"
)

// ParseGarmentType validates a user-supplied garment type. Empty means auto.
func ParseGarmentType(s string) (GarmentType, error) {
	switch GarmentType(strings.TrimSpace(strings.ToLower(s))) {
	case "", GarmentAuto:
		return GarmentAuto, nil
	case GarmentShortSleeve:
		return GarmentShortSleeve, nil
	case GarmentLongSleeve:
		return GarmentLongSleeve, nil
	case GarmentSleeveless:
		return GarmentSleeveless, nil
	case GarmentDress:
		return GarmentDress, nil
	case GarmentJacket:
		return GarmentJacket, nil
	default:
		return "", fmt.Errorf("unknown garment type %q (want short-sleeve, long-sleeve, sleeveless, dress, jacket or auto)", s)
	}
}

const tryOnPromptBase = `Create a photorealistic virtual try-on image showing the person from the first image wearing the garment from the second image.

Requirements:
1. Preserve the person's identity exactly: face, hair, skin tone, body shape and pose.
2. Replace the person's current clothing with the new garment completely; no parts of the original clothing may remain visible.
3. Preserve the background from the person image without distortion.
4. Drape the garment naturally over the body with realistic fabric folds, shadows and lighting consistent with the scene.
5. Handle sleeve-length transitions smoothly:
   - short-sleeved garment: show natural bare arms below the sleeve edge, removing any long sleeves underneath
   - long-sleeved garment: extend the sleeves to cover the arms completely
   - sleeveless garment: show natural shoulders and arms with no sleeves remaining
6. Output in 9:16 portrait aspect ratio at the highest quality, with no artifacts, blur or distortion.`

var garmentTypeHints = map[GarmentType]string{
	GarmentShortSleeve: "The garment is SHORT-SLEEVE: show bare arms below the sleeve edge.",
	GarmentLongSleeve:  "The garment is LONG-SLEEVE: sleeves must cover the arms down to the wrists.",
	GarmentSleeveless:  "The garment is SLEEVELESS: show bare shoulders and arms, remove all sleeves.",
	GarmentDress:       "The garment is a DRESS: it replaces both top and bottom clothing in one piece.",
	GarmentJacket:      "The garment is a JACKET: layer it naturally as outerwear over a plausible base layer.",
}

// tryOnPrompt assembles the generation prompt for one try-on call.
func tryOnPrompt(gt GarmentType, instructions string) string {
	var sb strings.Builder
	sb.WriteString(tryOnPromptBase)
	if hint, ok := garmentTypeHints[gt]; ok {
		sb.WriteString("\n\n")
		sb.WriteString(hint)
	}
	if extra := strings.TrimSpace(instructions); extra != "" {
		sb.WriteString("\n\nAdditional instructions: ")
		sb.WriteString(extra)
	}
	return sb.String()
}

var multiviewPrompts = map[View]string{
	ViewSide: `Generate a photorealistic side profile view (90 degrees) of this person.
Show the person from the side, facing left or right, as a genuine full profile rather than a slight turn.
Keep the exact same person: identical face, hair, body, clothing, proportions and posture.
Keep the background style, lighting and overall quality consistent with the source image.
Output in 9:16 portrait aspect ratio at maximum quality with no artifacts.`,

	ViewBack: `Generate a photorealistic back view (180 degrees) of this person.
Show the person facing completely away from the camera, with the back of the head, hair, body and clothing clearly visible.
Keep the exact same person: identical hair style, body, clothing colors and details as seen from behind.
Keep the background style, lighting and overall quality consistent with the source image.
Output in 9:16 portrait aspect ratio at maximum quality with no artifacts.`,
}

// multiviewPrompt returns the generation prompt for a side or back view.
func multiviewPrompt(v View) string {
	return multiviewPrompts[v]
}
