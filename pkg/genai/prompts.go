package genai

const (
	// DefaultEndpoint is the public Gemini API base URL.
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

	DefaultTextModel  = "gemini-3-flash-preview"
	DefaultImageModel = "gemini-2.5-flash-image"
)

const systemInstruction = `You are Unix Blacksteel, a premium, advanced AI research assistant.
Your primary language is Arabic.
You are objective, precise, and highly intellectual.
Format your responses using clean Markdown (headers, lists, bold text).
Never mention that you are an AI model unless explicitly asked.
Adopt a 'Blacksteel' persona: professional, efficient, and slightly futuristic.`

const mindMapInstruction = `You are a JSON generator for mind maps.
Output ONLY valid JSON. No markdown fences.
Structure: { "name": "Root Topic", "children": [ { "name": "Subtopic", "children": [...] } ] }
Keep node names concise (max 5 words).`

// FallbackReply is returned when the model answers with no text.
const FallbackReply = "عذراً، لم أتمكن من توليد إجابة."

const (
	questionLabel = "السؤال: "
	imagePrefix   = "High quality, academic educational illustration, detailed, clean lines: "
)

func textPrompt(modifier, prompt string) string {
	return modifier + "\n\n" + questionLabel + prompt
}

func mindMapPrompt(topic string) string {
	return `Create a detailed mind map about: "` + topic + `" in Arabic. Return ONLY raw JSON.`
}

// mindMapSchema limits the response to three levels of named nodes.
func mindMapSchema() *schema {
	leaf := &schema{Type: "OBJECT", Properties: map[string]*schema{"name": {Type: "STRING"}}}
	branch := &schema{Type: "OBJECT", Properties: map[string]*schema{
		"name":     {Type: "STRING"},
		"children": {Type: "ARRAY", Items: leaf},
	}}
	return &schema{Type: "OBJECT", Properties: map[string]*schema{
		"name":     {Type: "STRING"},
		"children": {Type: "ARRAY", Items: branch},
	}}
}
