package classify

import "strings"

// filenamePrompt asks the text model for a category from the filename alone
const filenamePrompt = `Classify this file into exactly ONE category based on its filename.

Categories:
- Images: photos, graphics, screenshots, icons, wallpapers, logos, banners (jpg, png, gif, svg, webp, ico, bmp)
- Documents: PDFs, Word docs, spreadsheets, presentations, text files, invoices, receipts, contracts, reports (pdf, doc, docx, txt, xls, xlsx, ppt)
- Videos: movies, clips, recordings, tutorials, screen recordings (mp4, mkv, avi, mov, webm)
- Audio: music, songs, podcasts, voice memos, sound effects (mp3, wav, flac, m4a, ogg)
- Archives: zip files, compressed files, backups, tarballs (zip, rar, 7z, tar, gz)
- Code: source code, scripts, config files, markup (py, js, html, css, json, xml, java, cpp)
- Executables: programs, installers, apps, batch files (exe, msi, dmg, app, bat, sh)
- Fonts: font files (ttf, otf, woff, woff2)
- Other: anything that doesn't fit above

Examples:
- "vacation_photo.jpg" → Images
- "invoice_2024.pdf" → Documents
- "react_app.zip" → Archives (it's compressed)
- "background_music.mp3" → Audio
- "setup.exe" → Executables
- "WhatsApp Image 2024.jpeg" → Images
- "VID-20240101-WA0001.mp4" → Videos
- "resume_john_doe.docx" → Documents
- "script.py" → Code

IMPORTANT: Respond with ONLY the category name, nothing else. No explanations.

Filename: {filename}
Category:`

// contentPrompt adds the first part of a text file to the filename
const contentPrompt = `Classify this file based on its filename AND contents.

Categories:
- Images: photos, graphics, screenshots
- Documents: text documents, reports, invoices, receipts, contracts
- Videos: video files, recordings
- Audio: music, podcasts, sound files
- Archives: compressed/zip files, backups
- Code: source code, scripts, config files
- Executables: programs, installers
- Fonts: font files
- Other: anything else

Filename: {filename}

File Contents (first 500 chars):
{content}

Based on the filename and contents, what category does this belong to?
Respond with ONLY the category name, nothing else.

Category:`

// visionPrompt constrains the vision model to Images, Documents or Other
const visionPrompt = `Analyze this image and classify it.

If it shows:
- A photo, artwork, graphic, screenshot, icon, or design → respond "Images"
- A scanned document, receipt, invoice, text-heavy image → respond "Documents"
- Something else → respond "Other"

Respond with ONLY one word: Images, Documents, or Other.`

// FilenamePrompt renders the filename-only prompt
func FilenamePrompt(filename string) string {
	return strings.NewReplacer("{filename}", filename).Replace(filenamePrompt)
}

// ContentPrompt renders the filename + content prompt.
// Placeholders are substituted in one pass, so braces inside the content stay literal.
func ContentPrompt(filename, content string) string {
	return strings.NewReplacer("{filename}", filename, "{content}", content).Replace(contentPrompt)
}

// VisionPrompt returns the image instruction
func VisionPrompt() string {
	return visionPrompt
}
