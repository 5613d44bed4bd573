package advisor

import (
	"fmt"
	"strings"
)

const identifyCropPrompt = "What crop is shown in this image? Just provide the crop name."

const diseasePrompt = `Analyze this plant image and provide a detailed disease assessment following this format:

# Plant Identification
[Plant or crop name]

# Disease Assessment
[Disease name, visible symptoms and severity]

# Treatment
1. **Immediate Actions**
[What to do now]

2. **Organic Options**
[Natural treatments]

# Prevention
[How to avoid recurrence]`

// SchemeDisclaimer is prepended to every scheme answer.
const SchemeDisclaimer = `# Disclaimer
**Important Notice**: The information provided about agricultural schemes and loans is for general guidance only. Actual schemes, eligibility criteria, and benefits may vary. Please verify all details with your local agricultural office or concerned authorities before making any decisions.

`

func agriculturePrompt(question string) string {
	return fmt.Sprintf(`As an agricultural expert, please provide comprehensive advice about sustainable ways to handle: %s
Structure your response in this exact format:

# Introduction
[Brief introduction to the topic]

# Detailed Recommendations
1. **[First Recommendation Title]**
[Detailed explanation]

2. **[Second Recommendation Title]**
[Detailed explanation]

# Best Practices
1. **[First Practice]**
[Explanation]

# Common Mistakes to Avoid
1. **[First Mistake]**
[How to avoid it]

# Sustainable Approaches
1. **[First Approach]**
[Details]

# Related Topics for Further Learning
- **[Topic 1]**: [Brief description]`, question)
}

func waterPrompt(crop, soil string) string {
	return fmt.Sprintf(`Provide specific water management advice for %[1]s crop grown in %[2]s soil.
Structure your response in this exact format:

# Water Management Plan
[Brief overview of water requirements for %[1]s in %[2]s soil]

# Detailed Recommendations
1. **Watering Schedule**
[Details about frequency and timing specific to %[1]s]

2. **Water Amount**
[Specific quantities and measurements for %[2]s soil]

# Best Practices
[Irrigation methods, mulching and monitoring]`, crop, soil)
}

func sustainableCropPrompt(crop string) string {
	return fmt.Sprintf(`Provide sustainable farming advice for %s. Structure your response in this exact format:

# Introduction
[Brief introduction about the crop]

# Sustainable Practices
1. **Soil Management**
[Organic and sustainable soil practices]

2. **Water Conservation**
[Efficient irrigation methods]

# Natural Solutions
1. **Pest Management**
[Organic pest control methods]

2. **Disease Prevention**
[Natural disease prevention]

# Eco-friendly Techniques
1. **Companion Planting**
[Best companion crops]

2. **Crop Rotation**
[Rotation schedule]

# Additional Tips
- **Climate Adaptation**: [Climate-specific advice]
- **Harvest Timing**: [Optimal harvesting practices]`, crop)
}

func bioFertilizerPrompt(crop, soil, stage string) string {
	return fmt.Sprintf(`Provide specific bio-fertilizer recommendations for %[1]s crop in %[2]s soil during %[3]s stage.
Structure your response in this exact format:

# Bio-Fertilizer Overview
[Brief introduction to recommendations for %[1]s]

# Detailed Recommendations
1. **Primary Bio-Fertilizers**
[Main products suitable for %[1]s in %[3]s stage]

2. **Application Methods**
[How to apply properly considering %[2]s soil]

# Precautions
[Storage, compatibility and timing]`, crop, soil, stage)
}

func schemePrompt(state, category string) string {
	return fmt.Sprintf(`%[3]sProvide information about agricultural schemes and loans in %[1]s state for %[2]s.
Structure your response in this exact format:

# Government Schemes Overview
[Brief introduction to available schemes in %[1]s for %[2]s]

# Major Schemes
1. **[Scheme Name 1 for %[2]s]**
[Detailed description]
- Eligibility: [Criteria specific to %[1]s]
- Benefits: [Details]
- Documents: [Requirements]

# How to Apply
[Offices, portals and deadlines]`, state, category, SchemeDisclaimer)
}

func weatherAdvicePrompt(city, crop, summary string) string {
	subject := "farmers"
	if strings.TrimSpace(crop) != "" {
		subject = crop + " farmers"
	}
	return fmt.Sprintf(`Based on the following weather outlook for %s, give practical advice for %s.

%s

Structure your response in this exact format:

# Weather Outlook
[One paragraph interpretation of the forecast]

# Field Operations
1. **Irrigation**
[When to water and when to hold off]

2. **Spraying and Fertilizing**
[Best windows given rain and temperature]

# Risks
[Heat, frost, disease or waterlogging risks to watch]`, city, subject, summary)
}
